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

	"github.com/astrogo/fitsio"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/ctessum/cdf"
	"github.com/pkg/errors"

	"github.com/heliomodel/scidata/schema"
	"github.com/heliomodel/scidata/units"
)

// Severity classifies a validation finding.
type Severity int

const (
	// SeverityWarning marks conventions the file should follow.
	SeverityWarning Severity = iota
	// SeverityError marks structure the file must have.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single validation finding.
type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// fileReport is the format-independent summary the validators check.
type fileReport struct {
	timeVar    string // name of the time variable found, "" if none
	globalAttr map[string]interface{}
	vars       []varReport
}

type varReport struct {
	name     string
	unit     string
	hasUnits bool
}

// check applies the shared structural rules to a report.
func (rep *fileReport) check(s *schema.Schema, timeName string) []Issue {
	var issues []Issue
	if rep.timeVar == "" {
		issues = append(issues, Issue{SeverityError,
			fmt.Sprintf("missing required time variable %q", timeName)})
	}
	if len(rep.vars) == 0 {
		issues = append(issues, Issue{SeverityError,
			"file contains no measurement variables"})
	}
	for _, v := range rep.vars {
		if !v.hasUnits || v.unit == "" {
			issues = append(issues, Issue{SeverityError,
				fmt.Sprintf("variable %q has no %s attribute", v.name, UnitsAttr)})
			continue
		}
		if !units.Known(v.unit) {
			issues = append(issues, Issue{SeverityWarning,
				fmt.Sprintf("variable %q has unrecognized unit %q", v.name, v.unit)})
		}
	}
	for _, a := range s.RequiredGlobal {
		if v, ok := rep.globalAttr[a]; !ok || v == nil || v == "" {
			issues = append(issues, Issue{SeverityWarning,
				fmt.Sprintf("missing global attribute %q", a)})
		}
	}
	return issues
}

// CDFValidator checks structural conformance of CDF files.
type CDFValidator struct {
	// Schema overrides the built-in attribute schema when non-nil.
	Schema *schema.Schema
}

// ValidateFile opens the named CDF file and returns its structural
// findings. Parse failures are reported as errors, not issues.
func (v *CDFValidator) ValidateFile(filename string) ([]Issue, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "fileio: opening CDF file")
	}
	defer f.Close()
	cf, err := cdf.Open(f)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: parsing CDF file %s", filename)
	}

	rep := &fileReport{globalAttr: make(map[string]interface{})}
	for _, a := range cf.Header.Attributes("") {
		rep.globalAttr[a] = normalizeAttr(cf.Header.GetAttribute("", a))
	}
	for _, name := range cf.Header.Variables() {
		if name == epochVar {
			rep.timeVar = name
			continue
		}
		vr := varReport{name: name}
		for _, a := range cf.Header.Attributes(name) {
			if a == UnitsAttr {
				vr.hasUnits = true
				vr.unit = attrString(cf.Header.GetAttribute(name, a))
			}
		}
		rep.vars = append(rep.vars, vr)
	}
	return rep.check(v.activeSchema(), epochVar), nil
}

func (v *CDFValidator) activeSchema() *schema.Schema {
	if v.Schema != nil {
		return v.Schema
	}
	return schema.Default()
}

// NetCDFValidator checks structural conformance of NetCDF files.
type NetCDFValidator struct {
	Schema *schema.Schema
}

// ValidateFile opens the named NetCDF file and returns its structural
// findings.
func (v *NetCDFValidator) ValidateFile(filename string) ([]Issue, error) {
	nc, err := netcdf.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: opening NetCDF file %s", filename)
	}
	defer nc.Close()

	rep := &fileReport{globalAttr: make(map[string]interface{})}
	copyAttrMap(nc.Attributes(), rep.globalAttr)
	for _, name := range nc.ListVariables() {
		if name == netcdfTimeVar {
			rep.timeVar = name
			continue
		}
		vr, err := nc.GetVariable(name)
		if err != nil {
			return nil, errors.Wrapf(err, "fileio: reading %q from %s", name, filename)
		}
		r := varReport{name: name}
		if vr.Attributes != nil {
			if u, has := vr.Attributes.Get(UnitsAttr); has {
				r.hasUnits = true
				r.unit = attrString(u)
			}
		}
		rep.vars = append(rep.vars, r)
	}
	return rep.check(v.activeSchema(), netcdfTimeVar), nil
}

func (v *NetCDFValidator) activeSchema() *schema.Schema {
	if v.Schema != nil {
		return v.Schema
	}
	return schema.Default()
}

// FITSValidator checks structural conformance of FITS files.
type FITSValidator struct {
	Schema *schema.Schema
}

// ValidateFile opens the named FITS file and returns its structural
// findings.
func (v *FITSValidator) ValidateFile(filename string) ([]Issue, error) {
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

	rep := &fileReport{globalAttr: make(map[string]interface{})}
	if phdu := f.HDU(0); phdu != nil {
		hdr := phdu.Header()
		for _, k := range hdr.Keys() {
			if fitsStructural(k) {
				continue
			}
			if card := hdr.Get(k); card != nil {
				rep.globalAttr[k] = card.Value
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
		return []Issue{{SeverityError, "file has no binary table HDU"}}, nil
	}
	for _, c := range tbl.Cols() {
		if c.Name == fitsTimeCol {
			rep.timeVar = c.Name
			continue
		}
		rep.vars = append(rep.vars, varReport{
			name:     c.Name,
			unit:     c.Unit,
			hasUnits: c.Unit != "",
		})
	}
	// FITS validation checks required global attributes against the
	// eight-character keyword form.
	s := v.activeSchema()
	fs := &schema.Schema{
		RequiredMeasurement: s.RequiredMeasurement,
		GlobalDefaults:      s.GlobalDefaults,
	}
	for _, a := range s.RequiredGlobal {
		if len(a) <= 8 {
			fs.RequiredGlobal = append(fs.RequiredGlobal, a)
		}
	}
	return rep.check(fs, fitsTimeCol), nil
}

func (v *FITSValidator) activeSchema() *schema.Schema {
	if v.Schema != nil {
		return v.Schema
	}
	return schema.Default()
}
