/*
Copyright © 2024 the scidata authors.
This file is part of scidata.

scidata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

scidata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with scidata.  If not, see <http://www.gnu.org/licenses/>.
*/

package fileio

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/pkg/errors"

	"github.com/heliomodel/scidata/timeseries"
)

// epochVar is the on-disk name of the time variable in CDF files.
const epochVar = "Epoch"

// timeDim is the record dimension name shared by all variables.
const timeDim = "time"

// CDFHandler loads and saves time-series tables in CDF format.
type CDFHandler struct{}

// LoadData parses the named CDF file into a table. The Epoch variable
// becomes the time column; every other variable becomes a measurement
// column with its UNITS attribute as the unit.
func (h *CDFHandler) LoadData(filename string) (*timeseries.Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "fileio: opening CDF file")
	}
	defer f.Close()
	cf, err := cdf.Open(f)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: parsing CDF file %s", filename)
	}

	t := timeseries.NewTable()
	for _, a := range cf.Header.Attributes("") {
		t.Meta()[a] = normalizeAttr(cf.Header.GetAttribute("", a))
	}

	vars := cf.Header.Variables()
	if !contains(vars, epochVar) {
		return nil, fmt.Errorf("fileio: CDF file %s has no %q variable", filename, epochVar)
	}
	secs, err := readFullVar(cf, epochVar)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: reading %q from %s", epochVar, filename)
	}
	t.SetTime(secondsToTimes(secs))
	for _, a := range cf.Header.Attributes(epochVar) {
		t.TimeMeta()[a] = normalizeAttr(cf.Header.GetAttribute(epochVar, a))
	}

	for _, v := range vars {
		if v == epochVar {
			continue
		}
		data, err := readFullVar(cf, v)
		if err != nil {
			return nil, errors.Wrapf(err, "fileio: reading %q from %s", v, filename)
		}
		q := &timeseries.Quantity{Data: data, Meta: make(map[string]interface{})}
		for _, a := range cf.Header.Attributes(v) {
			q.Meta[a] = normalizeAttr(cf.Header.GetAttribute(v, a))
		}
		q.Unit = attrString(q.Meta[UnitsAttr])
		if err := t.Set(v, q); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SaveData writes the table to a new CDF file at filePath.
func (h *CDFHandler) SaveData(data *timeseries.Table, filePath string) error {
	if !data.HasTime() {
		return fmt.Errorf("fileio: saving CDF: table has no %q column", timeseries.TimeColumn)
	}
	n := data.Len()
	hdr := cdf.NewHeader([]string{timeDim}, []int{n})

	hdr.AddVariable(epochVar, []string{timeDim}, []float64{0})
	hdr.AddAttribute(epochVar, UnitsAttr, timeUnits)
	for a, val := range data.TimeMeta() {
		if a == UnitsAttr {
			continue
		}
		hdr.AddAttribute(epochVar, a, encodeAttr(val))
	}

	for _, name := range data.Columns() {
		if name == timeseries.TimeColumn {
			continue
		}
		q, _ := data.Column(name)
		hdr.AddVariable(name, []string{timeDim}, []float64{0})
		hdr.AddAttribute(name, UnitsAttr, q.Unit)
		for a, val := range q.Meta {
			if a == UnitsAttr {
				continue
			}
			hdr.AddAttribute(name, a, encodeAttr(val))
		}
	}
	for a, val := range data.Meta() {
		hdr.AddAttribute("", a, encodeAttr(val))
	}
	hdr.Define()
	for _, err := range hdr.Check() {
		return fmt.Errorf("fileio: creating CDF header: %v", err)
	}

	ff, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "fileio: creating CDF file")
	}
	defer ff.Close()
	cf, err := cdf.Create(ff, hdr)
	if err != nil {
		return errors.Wrapf(err, "fileio: creating CDF file %s", filePath)
	}

	w := cf.Writer(epochVar, []int{0}, []int{n})
	if _, err := w.Write(timesToSeconds(data.Time())); err != nil {
		return errors.Wrapf(err, "fileio: writing %q to %s", epochVar, filePath)
	}
	for _, name := range data.Columns() {
		if name == timeseries.TimeColumn {
			continue
		}
		q, _ := data.Column(name)
		w := cf.Writer(name, []int{0}, []int{len(q.Data)})
		if _, err := w.Write(q.Data); err != nil {
			return errors.Wrapf(err, "fileio: writing %q to %s", name, filePath)
		}
	}
	return nil
}

// readFullVar reads an entire variable, widening to []float64.
func readFullVar(f *cdf.File, v string) ([]float64, error) {
	r := f.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return toFloat64s(buf)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
