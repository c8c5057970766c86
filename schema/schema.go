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

// Package schema holds the metadata attribute schema for heliophysics
// time-series products: which global and per-measurement attributes a
// file is expected to carry, their defaults, and derivation of the
// attributes that follow from the data itself.
package schema

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/heliomodel/scidata/timeseries"
)

// ValidDataLevels are the recognized data processing levels.
var ValidDataLevels = []string{"l0", "l1", "ql", "l2", "l3", "l4"}

// Schema describes the attribute conventions a data product follows.
type Schema struct {
	// RequiredGlobal are global attributes every file must carry.
	RequiredGlobal []string
	// RequiredMeasurement are attributes every measurement must carry.
	RequiredMeasurement []string
	// GlobalDefaults are attribute values filled in when absent.
	GlobalDefaults map[string]string
}

// Default returns the built-in schema.
func Default() *Schema {
	return &Schema{
		RequiredGlobal: []string{
			"Descriptor",
			"Data_level",
			"Data_version",
			"Start_time",
			"Logical_file_id",
		},
		RequiredMeasurement: []string{
			"CATDESC",
			"FIELDNAM",
			"LABLAXIS",
			"UNITS",
		},
		GlobalDefaults: map[string]string{
			"Data_level":   "l1>Level 1",
			"Data_version": "0.0.1",
		},
	}
}

// fileSchema is the on-disk TOML shape of a schema override.
type fileSchema struct {
	Global struct {
		Required []string          `toml:"required"`
		Defaults map[string]string `toml:"defaults"`
	} `toml:"global"`
	Measurement struct {
		Required []string `toml:"required"`
	} `toml:"measurement"`
}

// Load reads a schema override file, falling back to the built-in
// schema for anything the file leaves unset.
func Load(file string) (*Schema, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := ioutil.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("schema: problem reading schema file: %v", err)
	}
	var fs fileSchema
	if _, err := toml.Decode(string(b), &fs); err != nil {
		return nil, fmt.Errorf("schema: there has been an error parsing the schema file: %v", err)
	}
	s := Default()
	if len(fs.Global.Required) > 0 {
		s.RequiredGlobal = fs.Global.Required
	}
	if len(fs.Measurement.Required) > 0 {
		s.RequiredMeasurement = fs.Measurement.Required
	}
	for k, v := range fs.Global.Defaults {
		s.GlobalDefaults[k] = v
	}
	return s, nil
}

// GlobalAttributeTemplate returns a template of the required global
// attributes, seeded with defaults. dataLevel and version are
// optional; when given they must be a recognized data level and an
// X.Y.Z version string.
func (s *Schema) GlobalAttributeTemplate(dataLevel, version string) (map[string]interface{}, error) {
	meta := make(map[string]interface{}, len(s.RequiredGlobal))
	for _, k := range s.RequiredGlobal {
		meta[k] = s.GlobalDefaults[k]
	}
	if dataLevel != "" {
		if !contains(ValidDataLevels, dataLevel) {
			return nil, fmt.Errorf("schema: level %q is not recognized; must be one of %v",
				dataLevel, ValidDataLevels)
		}
		if dataLevel == "ql" {
			meta["Data_level"] = "QL>Quicklook"
		} else {
			meta["Data_level"] = fmt.Sprintf("%s>Level %s", strings.ToUpper(dataLevel), dataLevel[1:])
		}
	}
	if version != "" {
		if len(strings.Split(version, ".")) != 3 {
			return nil, fmt.Errorf("schema: version %q is not formatted correctly; should be X.Y.Z", version)
		}
		meta["Data_version"] = version
	}
	return meta, nil
}

// MeasurementAttributeTemplate returns a template of the required
// per-measurement attributes.
func (s *Schema) MeasurementAttributeTemplate() map[string]interface{} {
	meta := make(map[string]interface{}, len(s.RequiredMeasurement))
	for _, k := range s.RequiredMeasurement {
		meta[k] = ""
	}
	return meta
}

// DeriveGlobalAttributes computes the global attributes that follow
// from the data: time coverage, generation date and the logical file
// id. Attributes already present in the table metadata are not
// overwritten.
func (s *Schema) DeriveGlobalAttributes(t *timeseries.Table) map[string]interface{} {
	derived := make(map[string]interface{})
	if t.HasTime() && t.Len() > 0 {
		start, end := t.TimeRange()
		derived["Start_time"] = start.UTC().Format(time.RFC3339)
		derived["End_time"] = end.UTC().Format(time.RFC3339)
		descriptor := strings.ToLower(fmt.Sprint(t.Meta()["Descriptor"]))
		if descriptor == "" || descriptor == "<nil>" {
			descriptor = "scidata"
		}
		derived["Logical_file_id"] = fmt.Sprintf("%s_%s",
			descriptor, start.UTC().Format("20060102T150405"))
	}
	derived["Generation_date"] = time.Now().UTC().Format(time.RFC3339)
	for k := range derived {
		if v, ok := t.Meta()[k]; ok && v != nil && v != "" {
			delete(derived, k)
		}
	}
	return derived
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
