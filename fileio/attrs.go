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
	"sort"
	"time"

	"github.com/spf13/cast"
)

// UnitsAttr is the per-variable attribute that carries the physical
// unit in all three formats.
const UnitsAttr = "UNITS"

// timeUnits describes the on-disk time encoding shared by the handlers.
const timeUnits = "seconds since 1970-01-01T00:00:00Z"

// timesToSeconds converts a time index to float64 Unix seconds (UTC).
func timesToSeconds(times []time.Time) []float64 {
	o := make([]float64, len(times))
	for i, t := range times {
		o[i] = float64(t.UnixNano()) / 1e9
	}
	return o
}

// secondsToTimes converts float64 Unix seconds back to a time index.
func secondsToTimes(secs []float64) []time.Time {
	o := make([]time.Time, len(secs))
	for i, s := range secs {
		o[i] = time.Unix(0, int64(s*1e9)).UTC()
	}
	return o
}

// normalizeAttr unwraps the single-element slices the codecs return
// for scalar attributes.
func normalizeAttr(v interface{}) interface{} {
	switch a := v.(type) {
	case []float64:
		if len(a) == 1 {
			return a[0]
		}
	case []float32:
		if len(a) == 1 {
			return float64(a[0])
		}
	case []int32:
		if len(a) == 1 {
			return int(a[0])
		}
	case []int16:
		if len(a) == 1 {
			return int(a[0])
		}
	}
	return v
}

// attrString renders an attribute value as a string, empty for nil.
func attrString(v interface{}) string {
	if v == nil {
		return ""
	}
	return cast.ToString(normalizeAttr(v))
}

// encodeAttr converts arbitrary metadata values to the string and
// numeric-slice types the classic codec accepts.
func encodeAttr(v interface{}) interface{} {
	switch a := v.(type) {
	case string:
		return a
	case []float64:
		return a
	case []float32:
		return a
	case []int32:
		return a
	case float64:
		return []float64{a}
	case float32:
		return []float32{a}
	case int:
		return []int32{int32(a)}
	case int32:
		return []int32{a}
	case int64:
		return []int32{int32(a)}
	case bool:
		if a {
			return "true"
		}
		return "false"
	case time.Time:
		return a.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(a)
	}
}

// sortKeys returns the map keys in sorted order for deterministic
// on-disk layout.
func sortKeys(m map[string]interface{}) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// toFloat64s widens the numeric slice types the codecs hand back.
func toFloat64s(v interface{}) ([]float64, error) {
	switch d := v.(type) {
	case []float64:
		return d, nil
	case []float32:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	case []int64:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	case []uint8:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("fileio: unsupported variable data type %T", v)
	}
}
