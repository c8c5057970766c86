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

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/pkg/errors"

	"github.com/heliomodel/scidata/timeseries"
)

// netcdfTimeVar is the on-disk name of the time variable in NetCDF files.
const netcdfTimeVar = "time"

// NetCDFHandler loads and saves time-series tables in NetCDF format.
type NetCDFHandler struct{}

// LoadData parses the named NetCDF file into a table.
func (h *NetCDFHandler) LoadData(filename string) (*timeseries.Table, error) {
	nc, err := netcdf.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: opening NetCDF file %s", filename)
	}
	defer nc.Close()

	t := timeseries.NewTable()
	copyAttrMap(nc.Attributes(), t.Meta())

	vars := nc.ListVariables()
	if !contains(vars, netcdfTimeVar) {
		return nil, fmt.Errorf("fileio: NetCDF file %s has no %q variable", filename, netcdfTimeVar)
	}
	for _, name := range vars {
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, errors.Wrapf(err, "fileio: reading %q from %s", name, filename)
		}
		data, err := toFloat64s(vr.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "fileio: reading %q from %s", name, filename)
		}
		if name == netcdfTimeVar {
			t.SetTime(secondsToTimes(data))
			copyAttrMap(vr.Attributes, t.TimeMeta())
			continue
		}
		q := &timeseries.Quantity{Data: data, Meta: make(map[string]interface{})}
		copyAttrMap(vr.Attributes, q.Meta)
		q.Unit = attrString(q.Meta[UnitsAttr])
		if err := t.Set(name, q); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SaveData writes the table to a new NetCDF file at filePath.
func (h *NetCDFHandler) SaveData(data *timeseries.Table, filePath string) error {
	if !data.HasTime() {
		return fmt.Errorf("fileio: saving NetCDF: table has no %q column", timeseries.TimeColumn)
	}
	cw, err := cdf.OpenWriter(filePath)
	if err != nil {
		return errors.Wrapf(err, "fileio: creating NetCDF file %s", filePath)
	}

	timeAttrs := map[string]interface{}{UnitsAttr: timeUnits}
	for a, v := range data.TimeMeta() {
		if a == UnitsAttr {
			continue
		}
		timeAttrs[a] = encodeAttr(v)
	}
	am, err := orderedAttrs(timeAttrs)
	if err != nil {
		return err
	}
	if err := cw.AddVar(netcdfTimeVar, api.Variable{
		Values:     timesToSeconds(data.Time()),
		Dimensions: []string{netcdfTimeVar},
		Attributes: am,
	}); err != nil {
		return errors.Wrapf(err, "fileio: writing %q to %s", netcdfTimeVar, filePath)
	}

	for _, name := range data.Columns() {
		if name == timeseries.TimeColumn {
			continue
		}
		q, _ := data.Column(name)
		attrs := map[string]interface{}{UnitsAttr: q.Unit}
		for a, v := range q.Meta {
			if a == UnitsAttr {
				continue
			}
			attrs[a] = encodeAttr(v)
		}
		am, err := orderedAttrs(attrs)
		if err != nil {
			return err
		}
		if err := cw.AddVar(name, api.Variable{
			Values:     q.Data,
			Dimensions: []string{netcdfTimeVar},
			Attributes: am,
		}); err != nil {
			return errors.Wrapf(err, "fileio: writing %q to %s", name, filePath)
		}
	}

	if len(data.Meta()) > 0 {
		global := make(map[string]interface{}, len(data.Meta()))
		for a, v := range data.Meta() {
			global[a] = encodeAttr(v)
		}
		gm, err := orderedAttrs(global)
		if err != nil {
			return err
		}
		if err := cw.AddGlobalAttrs(gm); err != nil {
			return errors.Wrapf(err, "fileio: writing global attributes to %s", filePath)
		}
	}
	if err := cw.Close(); err != nil {
		return errors.Wrapf(err, "fileio: finalizing NetCDF file %s", filePath)
	}
	return nil
}

// orderedAttrs builds the ordered attribute map the writer requires.
// Keys are sorted for a deterministic on-disk layout.
func orderedAttrs(attrs map[string]interface{}) (api.AttributeMap, error) {
	keys := sortKeys(attrs)
	am, err := util.NewOrderedMap(keys, attrs)
	if err != nil {
		return nil, errors.Wrap(err, "fileio: building attribute map")
	}
	return am, nil
}

func copyAttrMap(am api.AttributeMap, dst map[string]interface{}) {
	if am == nil {
		return
	}
	for _, k := range am.Keys() {
		if v, has := am.Get(k); has {
			dst[k] = normalizeAttr(v)
		}
	}
}
