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
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"

	"github.com/heliomodel/scidata/timeseries"
)

// fitsExtName is the name of the binary-table HDU holding the data.
const fitsExtName = "TIMESERIES"

// fitsTimeCol is the name of the time column inside the table HDU.
const fitsTimeCol = "time"

// fitsReserved lists header keywords that describe FITS structure
// rather than user metadata.
var fitsReserved = map[string]bool{
	"SIMPLE": true, "BITPIX": true, "EXTEND": true, "XTENSION": true,
	"PCOUNT": true, "GCOUNT": true, "TFIELDS": true, "EXTNAME": true,
	"EXTVER": true, "END": true,
}

func fitsStructural(key string) bool {
	if fitsReserved[key] {
		return true
	}
	for _, pfx := range []string{"NAXIS", "TTYPE", "TFORM", "TUNIT"} {
		if strings.HasPrefix(key, pfx) {
			return true
		}
	}
	return false
}

// FITSHandler loads and saves time-series tables as FITS binary tables.
//
// FITS keywords are limited to eight upper-case characters, so only
// global metadata keys that fit that constraint survive a save;
// per-column metadata other than the unit is not representable at all.
type FITSHandler struct{}

// LoadData parses the named FITS file into a table. The first
// binary-table HDU is used; column units come from TUNITn.
func (h *FITSHandler) LoadData(filename string) (*timeseries.Table, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "fileio: opening FITS file")
	}
	defer r.Close()
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: parsing FITS file %s", filename)
	}
	defer f.Close()

	t := timeseries.NewTable()
	if phdu := f.HDU(0); phdu != nil {
		hdr := phdu.Header()
		for _, k := range hdr.Keys() {
			if fitsStructural(k) {
				continue
			}
			if card := hdr.Get(k); card != nil {
				t.Meta()[k] = card.Value
			}
		}
	}

	var tbl *fitsio.Table
	for _, hdu := range f.HDUs() {
		if bt, ok := hdu.(*fitsio.Table); ok {
			tbl = bt
			break
		}
	}
	if tbl == nil {
		return nil, fmt.Errorf("fileio: FITS file %s has no binary table HDU", filename)
	}

	cols := tbl.Cols()
	names := make([]string, len(cols))
	data := make(map[string][]float64, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		data[c.Name] = make([]float64, 0, tbl.NumRows())
	}
	if !contains(names, fitsTimeCol) {
		return nil, fmt.Errorf("fileio: FITS table in %s has no %q column", filename, fitsTimeCol)
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: reading FITS table from %s", filename)
	}
	defer rows.Close()
	for rows.Next() {
		m := make(map[string]interface{}, len(cols))
		if err := rows.Scan(&m); err != nil {
			return nil, errors.Wrapf(err, "fileio: reading FITS row from %s", filename)
		}
		for _, name := range names {
			v, err := scalarToFloat64(m[name])
			if err != nil {
				return nil, errors.Wrapf(err, "fileio: column %q in %s", name, filename)
			}
			data[name] = append(data[name], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "fileio: reading FITS table from %s", filename)
	}

	for i, c := range cols {
		if c.Name == fitsTimeCol {
			t.SetTime(secondsToTimes(data[c.Name]))
			t.TimeMeta()[UnitsAttr] = c.Unit
			continue
		}
		q := &timeseries.Quantity{
			Data: data[c.Name],
			Unit: c.Unit,
			Meta: map[string]interface{}{UnitsAttr: c.Unit},
		}
		if err := t.Set(cols[i].Name, q); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SaveData writes the table to a new FITS file at filePath.
func (h *FITSHandler) SaveData(data *timeseries.Table, filePath string) error {
	if !data.HasTime() {
		return fmt.Errorf("fileio: saving FITS: table has no %q column", timeseries.TimeColumn)
	}
	w, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "fileio: creating FITS file")
	}
	defer w.Close()
	f, err := fitsio.Create(w)
	if err != nil {
		return errors.Wrapf(err, "fileio: creating FITS file %s", filePath)
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return errors.Wrap(err, "fileio: creating FITS primary HDU")
	}
	hdr := phdu.Header()
	for _, k := range sortKeys(data.Meta()) {
		key := strings.ToUpper(k)
		if len(key) > 8 || fitsStructural(key) {
			continue // not representable as a FITS keyword
		}
		if err := hdr.Append(fitsio.Card{Name: key, Value: data.Meta()[k]}); err != nil {
			return errors.Wrapf(err, "fileio: writing header card %q", key)
		}
	}
	if err := f.Write(phdu); err != nil {
		return errors.Wrapf(err, "fileio: writing FITS primary HDU to %s", filePath)
	}

	cols := []fitsio.Column{{Name: fitsTimeCol, Format: "D", Unit: "s"}}
	names := data.Columns()
	for _, name := range names {
		if name == timeseries.TimeColumn {
			continue
		}
		q, _ := data.Column(name)
		cols = append(cols, fitsio.Column{Name: name, Format: "D", Unit: q.Unit})
	}
	tbl, err := fitsio.NewTable(fitsExtName, cols, fitsio.BINARY_TBL)
	if err != nil {
		return errors.Wrapf(err, "fileio: creating FITS table in %s", filePath)
	}
	defer tbl.Close()

	secs := timesToSeconds(data.Time())
	for i := range secs {
		row := map[string]interface{}{fitsTimeCol: secs[i]}
		for _, name := range names {
			if name == timeseries.TimeColumn {
				continue
			}
			q, _ := data.Column(name)
			row[name] = q.Data[i]
		}
		if err := tbl.Write(&row); err != nil {
			return errors.Wrapf(err, "fileio: writing FITS row %d to %s", i, filePath)
		}
	}
	if err := f.Write(tbl); err != nil {
		return errors.Wrapf(err, "fileio: writing FITS table to %s", filePath)
	}
	return nil
}

// scalarToFloat64 widens a single cell value.
func scalarToFloat64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("fileio: unsupported cell type %T", v)
	}
}
