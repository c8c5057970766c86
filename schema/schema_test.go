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

package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/heliomodel/scidata/timeseries"
)

func TestDefault(t *testing.T) {
	s := Default()
	if !contains(s.RequiredGlobal, "Descriptor") || !contains(s.RequiredGlobal, "Data_level") {
		t.Errorf("required global attributes: %v", s.RequiredGlobal)
	}
	if !contains(s.RequiredMeasurement, "UNITS") {
		t.Errorf("required measurement attributes: %v", s.RequiredMeasurement)
	}
	if s.GlobalDefaults["Data_version"] != "0.0.1" {
		t.Errorf("defaults: %v", s.GlobalDefaults)
	}
}

func TestLoad(t *testing.T) {
	s, err := Load("testdata/schema.toml")
	if err != nil {
		t.Fatal(err)
	}
	wantGlobal := []string{"Descriptor", "Mission_group"}
	if !reflect.DeepEqual(s.RequiredGlobal, wantGlobal) {
		t.Errorf("required global: %v != %v", s.RequiredGlobal, wantGlobal)
	}
	wantMeas := []string{"CATDESC", "UNITS"}
	if !reflect.DeepEqual(s.RequiredMeasurement, wantMeas) {
		t.Errorf("required measurement: %v != %v", s.RequiredMeasurement, wantMeas)
	}
	// File defaults merge over the built-in ones.
	if s.GlobalDefaults["Mission_group"] != "PUNCH" {
		t.Errorf("defaults: %v", s.GlobalDefaults)
	}
	if s.GlobalDefaults["Data_version"] != "0.0.1" {
		t.Errorf("built-in default lost: %v", s.GlobalDefaults)
	}

	if _, err := Load("testdata/nonexistent.toml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGlobalAttributeTemplate(t *testing.T) {
	s := Default()
	t.Run("defaults", func(t *testing.T) {
		meta, err := s.GlobalAttributeTemplate("", "")
		if err != nil {
			t.Fatal(err)
		}
		if meta["Data_level"] != "l1>Level 1" || meta["Data_version"] != "0.0.1" {
			t.Errorf("template: %v", meta)
		}
		if _, ok := meta["Descriptor"]; !ok {
			t.Errorf("template missing Descriptor: %v", meta)
		}
	})
	t.Run("level and version", func(t *testing.T) {
		meta, err := s.GlobalAttributeTemplate("l2", "1.2.3")
		if err != nil {
			t.Fatal(err)
		}
		if meta["Data_level"] != "L2>Level 2" {
			t.Errorf("data level: %v", meta["Data_level"])
		}
		if meta["Data_version"] != "1.2.3" {
			t.Errorf("data version: %v", meta["Data_version"])
		}
	})
	t.Run("quicklook", func(t *testing.T) {
		meta, err := s.GlobalAttributeTemplate("ql", "")
		if err != nil {
			t.Fatal(err)
		}
		if meta["Data_level"] != "QL>Quicklook" {
			t.Errorf("data level: %v", meta["Data_level"])
		}
	})
	t.Run("bad level", func(t *testing.T) {
		if _, err := s.GlobalAttributeTemplate("l9", ""); err == nil {
			t.Error("expected error for unrecognized level")
		}
	})
	t.Run("bad version", func(t *testing.T) {
		if _, err := s.GlobalAttributeTemplate("", "1.2"); err == nil {
			t.Error("expected error for malformed version")
		}
	})
}

func TestMeasurementAttributeTemplate(t *testing.T) {
	meta := Default().MeasurementAttributeTemplate()
	for _, k := range []string{"CATDESC", "FIELDNAM", "LABLAXIS", "UNITS"} {
		if _, ok := meta[k]; !ok {
			t.Errorf("template missing %q: %v", k, meta)
		}
	}
}

func TestDeriveGlobalAttributes(t *testing.T) {
	tbl := timeseries.NewTable()
	start := time.Date(2016, 3, 22, 12, 30, 31, 0, time.UTC)
	tbl.SetTime([]time.Time{start, start.Add(6 * time.Second)})
	tbl.Meta()["Descriptor"] = "EEA"

	s := Default()
	derived := s.DeriveGlobalAttributes(tbl)
	if derived["Start_time"] != "2016-03-22T12:30:31Z" {
		t.Errorf("start time: %v", derived["Start_time"])
	}
	if derived["End_time"] != "2016-03-22T12:30:37Z" {
		t.Errorf("end time: %v", derived["End_time"])
	}
	if derived["Logical_file_id"] != "eea_20160322T123031" {
		t.Errorf("logical file id: %v", derived["Logical_file_id"])
	}
	if _, ok := derived["Generation_date"]; !ok {
		t.Error("generation date missing")
	}

	t.Run("present values kept", func(t *testing.T) {
		tbl.Meta()["Start_time"] = "already set"
		derived := s.DeriveGlobalAttributes(tbl)
		if _, ok := derived["Start_time"]; ok {
			t.Error("derived value would overwrite existing attribute")
		}
	})
	t.Run("no time index", func(t *testing.T) {
		empty := timeseries.NewTable()
		derived := s.DeriveGlobalAttributes(empty)
		if _, ok := derived["Start_time"]; ok {
			t.Errorf("unexpected start time: %v", derived)
		}
		if _, ok := derived["Generation_date"]; !ok {
			t.Error("generation date missing")
		}
	})
}
