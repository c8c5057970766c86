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

package scidatautil

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/heliomodel/scidata"
	"github.com/heliomodel/scidata/fileio"
	"github.com/heliomodel/scidata/schema"
	"github.com/heliomodel/scidata/timeseries"
)

// writeTestFile saves a small valid data file and returns its path.
func writeTestFile(t *testing.T, name string) string {
	t.Helper()
	tbl := timeseries.NewTable()
	start := time.Date(2016, 3, 22, 12, 30, 31, 0, time.UTC)
	times := make([]time.Time, 4)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * 3 * time.Second)
	}
	tbl.SetTime(times)
	if err := tbl.Set("flux", &timeseries.Quantity{
		Data: []float64{10, 20, 30, 40},
		Unit: "counts",
	}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := fileio.FormatForPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Handler().SaveData(tbl, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	Root.SetOut(&buf)
	Root.SetErr(&buf)
	Root.SetArgs(args)
	err := Root.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	want := "scidata v" + scidata.Version + "\n"
	if out != want {
		t.Errorf("output %q; want %q", out, want)
	}
}

func TestDescribeCmd(t *testing.T) {
	path := writeTestFile(t, "in.cdf")
	out, err := execute(t, "describe", "--stats", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Shape: (4, 2)", "flux [counts]", "Time range:", "min=10 max=40 mean=25"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCmd(t *testing.T) {
	path := writeTestFile(t, "in.cdf")
	// A structurally valid file still draws warnings for the missing
	// required global attributes, but no errors.
	out, err := execute(t, "validate", path)
	if err != nil {
		t.Fatalf("error: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "warning: missing global attribute") {
		t.Errorf("expected attribute warnings:\n%s", out)
	}

	if _, err := execute(t, "validate", "nope.xyz"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestConvert(t *testing.T) {
	in := writeTestFile(t, "in.cdf")
	out := filepath.Join(filepath.Dir(in), "out.nc")
	if err := Convert(in, out); err != nil {
		t.Fatal(err)
	}
	sd, err := scidata.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := sd.Shape()
	if rows != 4 || cols != 2 {
		t.Errorf("converted shape: (%d, %d)", rows, cols)
	}
	if sd.Units()["flux"] != "counts" {
		t.Errorf("converted units: %v", sd.Units())
	}

	t.Run("unsupported output", func(t *testing.T) {
		if err := Convert(in, "out.xyz"); err == nil {
			t.Error("expected error for unsupported output format")
		}
	})
	t.Run("missing output dir", func(t *testing.T) {
		if err := Convert(in, "/nonexistent/dir/out.nc"); err == nil {
			t.Error("expected error for missing output directory")
		}
	})
}

func TestCheckOutputFile(t *testing.T) {
	if err := checkOutputFile(""); err == nil {
		t.Error("expected error for empty path")
	}
	if err := checkOutputFile("/nonexistent/dir/out.nc"); err == nil {
		t.Error("expected error for missing directory")
	}
	if err := checkOutputFile(filepath.Join(t.TempDir(), "out.nc")); err != nil {
		t.Error(err)
	}
}

func TestExpandStringSlice(t *testing.T) {
	t.Setenv("SCIDATA_TEST_DIR", "/data")
	got := expandStringSlice([]string{"$SCIDATA_TEST_DIR/a.cdf", "b.cdf"})
	want := []string{"/data/a.cdf", "b.cdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%v != %v", got, want)
	}
}

func TestLoadSchema(t *testing.T) {
	s, err := loadSchema("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, schema.Default()) {
		t.Error("empty path should give the built-in schema")
	}
	if _, err := loadSchema("nonexistent.toml"); err == nil {
		t.Error("expected error for missing schema file")
	}
}
