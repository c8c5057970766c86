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

// Package scidata provides a validated container for heliophysics
// time-series data together with extension-based loading, saving and
// validation of CDF, NetCDF and FITS files.
package scidata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/heliomodel/scidata/fileio"
	"github.com/heliomodel/scidata/timeseries"
)

// Version is the scidata release version.
const Version = "0.1.0"

// ScienceData wraps a time-series table and enforces its structural
// invariants: at least two columns, one of them the time index, and a
// physical unit on every measurement.
//
// The wrapped table is a private copy; mutating the table a container
// was constructed from does not affect the container. A ScienceData
// is not safe for concurrent use.
type ScienceData struct {
	data    *timeseries.Table
	handler fileio.Handler
}

// New wraps data in a validated container. The handler is optional
// and may be nil; it is shared, not owned. Checks are applied in
// order: the table must be non-nil, have at least 2 columns, have a
// "time" column, and every measurement must carry a unit.
func New(data *timeseries.Table, handler fileio.Handler) (*ScienceData, error) {
	if data == nil {
		return nil, &TypeMismatchError{Reason: "invalid data type: must be a timeseries.Table"}
	}
	if data.NumColumns() < 2 {
		return nil, &ShapeError{Reason: "data must have at least 2 columns"}
	}
	if !data.HasTime() {
		return nil, &ShapeError{Reason: `data must have a "time" column`}
	}
	for _, name := range data.Columns() {
		if name == timeseries.TimeColumn {
			continue
		}
		q, _ := data.Column(name)
		if q.Unit == "" {
			return nil, &MissingUnitError{Column: name}
		}
	}
	return &ScienceData{data: data.Copy(), handler: handler}, nil
}

// Load reads a file through the given handler and wraps the result,
// applying the same invariant checks as New.
func Load(filename string, handler fileio.Handler) (*ScienceData, error) {
	if handler == nil {
		return nil, &TypeMismatchError{Reason: "handler must be a fileio.Handler"}
	}
	data, err := handler.LoadData(filename)
	if err != nil {
		return nil, err
	}
	return New(data, handler)
}

// Read loads the named file, selecting the handler by file extension.
func Read(filename string) (*ScienceData, error) {
	f, err := fileio.FormatForPath(filename)
	if err != nil {
		return nil, err
	}
	return Load(filename, f.Handler())
}

// Validate runs the format-specific validator for the named file and
// returns its findings unmodified.
func Validate(filename string) ([]fileio.Issue, error) {
	f, err := fileio.FormatForPath(filename)
	if err != nil {
		return nil, err
	}
	return f.Validator().ValidateFile(filename)
}

// Data returns the wrapped table. The table is live: mutations
// through it are visible to the container.
func (s *ScienceData) Data() *timeseries.Table { return s.data }

// Handler returns the configured persistence handler, nil if none.
func (s *ScienceData) Handler() fileio.Handler { return s.handler }

// SetHandler replaces the persistence handler. A nil handler
// disables Save.
func (s *ScienceData) SetHandler(h fileio.Handler) { s.handler = h }

// Meta returns the global metadata of the data.
func (s *ScienceData) Meta() map[string]interface{} { return s.data.Meta() }

// Get returns the named measurement. The returned quantity is the
// stored column, not a copy.
func (s *ScienceData) Get(name string) (*timeseries.Quantity, error) {
	q, ok := s.data.Column(name)
	if !ok {
		return nil, &MissingColumnError{Name: name}
	}
	return q, nil
}

// Set inserts or replaces the named measurement. The quantity must
// carry a unit; its data and metadata are copied into the container.
func (s *ScienceData) Set(name string, q *timeseries.Quantity) error {
	return s.AddMeasurement(name, q, nil)
}

// AddMeasurement inserts or replaces a measurement, merging attrs
// over the metadata carried by the quantity.
func (s *ScienceData) AddMeasurement(name string, q *timeseries.Quantity, attrs map[string]interface{}) error {
	if q == nil || q.Unit == "" {
		return &MissingUnitError{Column: name}
	}
	if s.data.Len() != len(q.Data) {
		return &ShapeError{Reason: fmt.Sprintf("measurement %q has %d rows; expected %d",
			name, len(q.Data), s.data.Len())}
	}
	c := q.Copy()
	for k, v := range attrs {
		c.Meta[k] = v
	}
	return s.data.Set(name, c)
}

// RemoveMeasurement deletes an existing measurement.
func (s *ScienceData) RemoveMeasurement(name string) error {
	if !s.data.HasColumn(name) || name == timeseries.TimeColumn {
		return &MissingColumnError{Name: name}
	}
	s.data.Remove(name)
	return nil
}

// Append stacks the rows of data below the container. The appended
// table must have the same columns with dimensionally compatible
// units.
func (s *ScienceData) Append(data *timeseries.Table) error {
	if data == nil {
		return &TypeMismatchError{Reason: "invalid data type: must be a timeseries.Table"}
	}
	if data.NumColumns() < 2 {
		return &ShapeError{Reason: "data must have at least 2 columns"}
	}
	return s.data.Append(data)
}

// Contains reports whether a column with the given name exists,
// including "time".
func (s *ScienceData) Contains(name string) bool {
	return s.data.HasColumn(name)
}

// Each calls fn for every measurement in table order.
func (s *ScienceData) Each(fn func(name string, q *timeseries.Quantity)) {
	for _, name := range s.data.Columns() {
		if name == timeseries.TimeColumn {
			continue
		}
		q, _ := s.data.Column(name)
		fn(name, q)
	}
}

// Len returns the number of columns, including time.
func (s *ScienceData) Len() int { return s.data.NumColumns() }

// Columns returns the column names in table order, time first.
func (s *ScienceData) Columns() []string { return s.data.Columns() }

// Units maps each column to its physical unit: the unit carried by
// the quantity if set, else its UNITS metadata entry, else empty.
func (s *ScienceData) Units() map[string]string {
	o := make(map[string]string, s.data.NumColumns())
	for _, name := range s.data.Columns() {
		if name == timeseries.TimeColumn {
			o[name] = metaUnits(s.data.TimeMeta())
			continue
		}
		q, _ := s.data.Column(name)
		if q.Unit != "" {
			o[name] = q.Unit
		} else {
			o[name] = metaUnits(q.Meta)
		}
	}
	return o
}

func metaUnits(meta map[string]interface{}) string {
	if u, ok := meta[fileio.UnitsAttr]; ok && u != nil {
		return fmt.Sprint(u)
	}
	return ""
}

// Time returns the time index, nil if none.
func (s *ScienceData) Time() []time.Time { return s.data.Time() }

// TimeRange returns the first and last timestamps.
func (s *ScienceData) TimeRange() (start, end time.Time) { return s.data.TimeRange() }

// Shape returns (rows, columns). Rows is 0 when there is no time
// column.
func (s *ScienceData) Shape() (rows, cols int) {
	if s.data.HasTime() {
		rows = s.data.Len()
	}
	return rows, s.data.NumColumns()
}

// Save writes the data to outputPath using the configured handler.
func (s *ScienceData) Save(outputPath string) error {
	if s.handler == nil {
		return ErrNoHandler
	}
	return s.handler.SaveData(s.data, outputPath)
}

// String summarizes the container: global attributes, shape and the
// columns with their units.
func (s *ScienceData) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ScienceData:\n")
	fmt.Fprintf(&b, "Global Attrs:\n")
	for _, k := range sortedKeys(s.data.Meta()) {
		fmt.Fprintf(&b, "\t%s: %v\n", k, s.data.Meta()[k])
	}
	rows, cols := s.Shape()
	fmt.Fprintf(&b, "Shape: (%d, %d)\n", rows, cols)
	fmt.Fprintf(&b, "Columns:\n")
	us := s.Units()
	for _, name := range s.data.Columns() {
		fmt.Fprintf(&b, "\t%s [%s]\n", name, us[name])
	}
	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
