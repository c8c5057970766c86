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
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/heliomodel/scidata/schema"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"data.cdf", FormatCDF, false},
		{"data.nc", FormatNetCDF, false},
		{"data.fits", FormatFITS, false},
		{"/some/dir/mms1_fgm_srvy.cdf", FormatCDF, false},
		{"data.CDF", 0, true}, // extension match is case sensitive
		{"data.fit", 0, true},
		{"data.hdf5", 0, true},
		{"data", 0, true},
		{"", 0, true},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			got, err := FormatForPath(test.path)
			if test.err {
				if err == nil {
					t.Fatal("expected error")
				}
				if _, ok := err.(*UnsupportedFormatError); !ok {
					t.Errorf("error type %T; want UnsupportedFormatError", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("format %v; want %v", got, test.want)
			}
		})
	}
}

func TestFormatAccessors(t *testing.T) {
	if FormatCDF.Ext() != ".cdf" || FormatNetCDF.Ext() != ".nc" || FormatFITS.Ext() != ".fits" {
		t.Error("extensions wrong")
	}
	if FormatCDF.String() != "CDF" || FormatNetCDF.String() != "NetCDF" || FormatFITS.String() != "FITS" {
		t.Error("names wrong")
	}
	for _, f := range []Format{FormatCDF, FormatNetCDF, FormatFITS} {
		if f.Handler() == nil {
			t.Errorf("%v: nil handler", f)
		}
		if f.Validator() == nil {
			t.Errorf("%v: nil validator", f)
		}
	}
}

func TestIssueString(t *testing.T) {
	i := Issue{SeverityError, "missing required time variable"}
	if got := i.String(); got != "error: missing required time variable" {
		t.Errorf("issue string: %q", got)
	}
	i = Issue{SeverityWarning, "unrecognized unit"}
	if got := i.String(); got != "warning: unrecognized unit" {
		t.Errorf("issue string: %q", got)
	}
}

func TestReportCheck(t *testing.T) {
	s := &schema.Schema{RequiredGlobal: []string{"Descriptor"}}
	countBySeverity := func(issues []Issue) (nWarn, nErr int) {
		for _, i := range issues {
			if i.Severity == SeverityError {
				nErr++
			} else {
				nWarn++
			}
		}
		return
	}

	t.Run("clean", func(t *testing.T) {
		rep := &fileReport{
			timeVar:    "Epoch",
			globalAttr: map[string]interface{}{"Descriptor": "EEA"},
			vars:       []varReport{{name: "Bx", unit: "nT", hasUnits: true}},
		}
		if issues := rep.check(s, "Epoch"); len(issues) != 0 {
			t.Errorf("unexpected issues: %v", issues)
		}
	})
	t.Run("missing time", func(t *testing.T) {
		rep := &fileReport{
			globalAttr: map[string]interface{}{"Descriptor": "EEA"},
			vars:       []varReport{{name: "Bx", unit: "nT", hasUnits: true}},
		}
		issues := rep.check(s, "Epoch")
		_, nErr := countBySeverity(issues)
		if nErr != 1 {
			t.Errorf("issues: %v", issues)
		}
		if !strings.Contains(issues[0].Message, "Epoch") {
			t.Errorf("message does not name the time variable: %q", issues[0].Message)
		}
	})
	t.Run("no measurements", func(t *testing.T) {
		rep := &fileReport{
			timeVar:    "Epoch",
			globalAttr: map[string]interface{}{"Descriptor": "EEA"},
		}
		issues := rep.check(s, "Epoch")
		_, nErr := countBySeverity(issues)
		if nErr != 1 {
			t.Errorf("issues: %v", issues)
		}
	})
	t.Run("missing units", func(t *testing.T) {
		rep := &fileReport{
			timeVar:    "Epoch",
			globalAttr: map[string]interface{}{"Descriptor": "EEA"},
			vars:       []varReport{{name: "Bx"}},
		}
		issues := rep.check(s, "Epoch")
		_, nErr := countBySeverity(issues)
		if nErr != 1 {
			t.Errorf("issues: %v", issues)
		}
	})
	t.Run("unknown unit warns", func(t *testing.T) {
		rep := &fileReport{
			timeVar:    "Epoch",
			globalAttr: map[string]interface{}{"Descriptor": "EEA"},
			vars:       []varReport{{name: "Bx", unit: "furlongs", hasUnits: true}},
		}
		issues := rep.check(s, "Epoch")
		nWarn, nErr := countBySeverity(issues)
		if nErr != 0 || nWarn != 1 {
			t.Errorf("issues: %v", issues)
		}
	})
	t.Run("missing global warns", func(t *testing.T) {
		rep := &fileReport{
			timeVar:    "Epoch",
			globalAttr: map[string]interface{}{},
			vars:       []varReport{{name: "Bx", unit: "nT", hasUnits: true}},
		}
		issues := rep.check(s, "Epoch")
		nWarn, nErr := countBySeverity(issues)
		if nErr != 0 || nWarn != 1 {
			t.Errorf("issues: %v", issues)
		}
	})
}

func TestTimeSecondsConversion(t *testing.T) {
	times := []time.Time{
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2016, 3, 22, 12, 30, 31, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 500000000, time.UTC),
	}
	got := secondsToTimes(timesToSeconds(times))
	for i := range times {
		if d := got[i].Sub(times[i]); d < -time.Microsecond || d > time.Microsecond {
			t.Errorf("time %d: %v != %v (off by %v)", i, got[i], times[i], d)
		}
	}
}

func TestNormalizeAttr(t *testing.T) {
	tests := []struct {
		in, want interface{}
	}{
		{[]float64{3.5}, 3.5},
		{[]float32{2}, float64(2)},
		{[]int32{7}, 7},
		{[]int16{7}, 7},
		{[]float64{1, 2}, []float64{1, 2}},
		{"text", "text"},
	}
	for _, test := range tests {
		if got := normalizeAttr(test.in); !reflect.DeepEqual(got, test.want) {
			t.Errorf("normalizeAttr(%v) = %v; want %v", test.in, got, test.want)
		}
	}
	if got := normalizeAttr(nil); got != nil {
		t.Errorf("normalizeAttr(nil) = %v", got)
	}
}

func TestAttrString(t *testing.T) {
	if got := attrString(nil); got != "" {
		t.Errorf("attrString(nil) = %q", got)
	}
	if got := attrString("nT"); got != "nT" {
		t.Errorf("attrString: %q", got)
	}
	if got := attrString([]float64{1.5}); got != "1.5" {
		t.Errorf("attrString: %q", got)
	}
}

func TestEncodeAttr(t *testing.T) {
	tests := []struct {
		in, want interface{}
	}{
		{"s", "s"},
		{3.5, []float64{3.5}},
		{7, []int32{7}},
		{int64(7), []int32{7}},
		{true, "true"},
		{[]float64{1, 2}, []float64{1, 2}},
	}
	for _, test := range tests {
		if got := encodeAttr(test.in); !reflect.DeepEqual(got, test.want) {
			t.Errorf("encodeAttr(%v) = %v; want %v", test.in, got, test.want)
		}
	}
	tm := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := encodeAttr(tm); got != "2024-01-02T03:04:05Z" {
		t.Errorf("encodeAttr(time): %v", got)
	}
}

func TestToFloat64s(t *testing.T) {
	want := []float64{1, 2, 3}
	for _, in := range []interface{}{
		[]float64{1, 2, 3},
		[]float32{1, 2, 3},
		[]int32{1, 2, 3},
		[]int16{1, 2, 3},
		[]int64{1, 2, 3},
		[]uint8{1, 2, 3},
	} {
		got, err := toFloat64s(in)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("toFloat64s(%T) = %v", in, got)
		}
	}
	if _, err := toFloat64s("not a slice"); err == nil {
		t.Error("expected error for unsupported type")
	}
}
