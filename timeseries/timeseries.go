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

// Package timeseries implements an ordered, named collection of
// measurement columns indexed by a canonical "time" column.
package timeseries

import (
	"fmt"
	"time"

	"github.com/heliomodel/scidata/units"
)

// TimeColumn is the canonical name of the index column.
const TimeColumn = "time"

// Quantity is a one-dimensional numeric measurement with a physical
// unit and free-form per-column metadata.
type Quantity struct {
	Data []float64
	Unit string
	Meta map[string]interface{}
}

// Copy returns a deep copy of q.
func (q *Quantity) Copy() *Quantity {
	o := &Quantity{
		Data: make([]float64, len(q.Data)),
		Unit: q.Unit,
		Meta: copyMeta(q.Meta),
	}
	copy(o.Data, q.Data)
	return o
}

func copyMeta(m map[string]interface{}) map[string]interface{} {
	o := make(map[string]interface{}, len(m))
	for k, v := range m {
		o[k] = v
	}
	return o
}

// Table is a time-indexed collection of Quantities. Column order is
// insertion order, with the time column always reported first.
type Table struct {
	time     []time.Time
	timeMeta map[string]interface{}
	hasTime  bool

	names []string
	cols  map[string]*Quantity

	meta map[string]interface{}
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		timeMeta: make(map[string]interface{}),
		cols:     make(map[string]*Quantity),
		meta:     make(map[string]interface{}),
	}
}

// SetTime sets the time index. The slice is copied.
func (t *Table) SetTime(times []time.Time) {
	t.time = make([]time.Time, len(times))
	copy(t.time, times)
	t.hasTime = true
}

// Time returns the time index, or nil if none has been set.
func (t *Table) Time() []time.Time {
	if !t.hasTime {
		return nil
	}
	return t.time
}

// HasTime reports whether a time index has been set.
func (t *Table) HasTime() bool { return t.hasTime }

// TimeMeta returns the metadata attached to the time column.
func (t *Table) TimeMeta() map[string]interface{} { return t.timeMeta }

// Meta returns the table-level (global) metadata.
func (t *Table) Meta() map[string]interface{} { return t.meta }

// Set inserts or replaces the named column. Setting the time column
// through Set is not allowed; use SetTime.
func (t *Table) Set(name string, q *Quantity) error {
	if name == TimeColumn {
		return fmt.Errorf("timeseries: column %q must be set with SetTime", TimeColumn)
	}
	if q == nil {
		return fmt.Errorf("timeseries: column %q: nil quantity", name)
	}
	if _, ok := t.cols[name]; !ok {
		t.names = append(t.names, name)
	}
	if q.Meta == nil {
		q.Meta = make(map[string]interface{})
	}
	t.cols[name] = q
	return nil
}

// Column returns the named column, reporting whether it exists.
// The time column is not addressable by name here.
func (t *Table) Column(name string) (*Quantity, bool) {
	q, ok := t.cols[name]
	return q, ok
}

// Remove deletes the named column if present.
func (t *Table) Remove(name string) {
	if _, ok := t.cols[name]; !ok {
		return
	}
	delete(t.cols, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
}

// HasColumn reports whether the named column (including "time") exists.
func (t *Table) HasColumn(name string) bool {
	if name == TimeColumn {
		return t.hasTime
	}
	_, ok := t.cols[name]
	return ok
}

// Columns returns all column names in table order, time first.
func (t *Table) Columns() []string {
	var o []string
	if t.hasTime {
		o = append(o, TimeColumn)
	}
	o = append(o, t.names...)
	return o
}

// NumColumns returns the number of columns, including time.
func (t *Table) NumColumns() int {
	n := len(t.names)
	if t.hasTime {
		n++
	}
	return n
}

// Len returns the number of rows, which is the length of the time index.
func (t *Table) Len() int { return len(t.time) }

// TimeRange returns the first and last timestamps of the index.
// The index is assumed to be ordered.
func (t *Table) TimeRange() (start, end time.Time) {
	if len(t.time) == 0 {
		return
	}
	return t.time[0], t.time[len(t.time)-1]
}

// Copy returns a deep copy of the table; later mutation of either
// table does not affect the other.
func (t *Table) Copy() *Table {
	o := NewTable()
	if t.hasTime {
		o.SetTime(t.time)
	}
	o.timeMeta = copyMeta(t.timeMeta)
	o.meta = copyMeta(t.meta)
	for _, name := range t.names {
		o.Set(name, t.cols[name].Copy())
	}
	return o
}

// Append stacks the rows of other below t. Both tables must have time
// indices and identical column sets, and each pair of columns must
// carry compatible units. The receiver's per-column metadata wins.
func (t *Table) Append(other *Table) error {
	if other == nil {
		return fmt.Errorf("timeseries: append: nil table")
	}
	if !t.hasTime || !other.hasTime {
		return fmt.Errorf("timeseries: append: both tables must have a %q column", TimeColumn)
	}
	if len(t.names) != len(other.names) {
		return fmt.Errorf("timeseries: append: column count mismatch: %d != %d",
			t.NumColumns(), other.NumColumns())
	}
	for _, name := range t.names {
		oq, ok := other.cols[name]
		if !ok {
			return fmt.Errorf("timeseries: append: column %q missing from appended table", name)
		}
		q := t.cols[name]
		if !units.Compatible(q.Unit, oq.Unit) {
			return fmt.Errorf("timeseries: append: column %q: unit %q is not compatible with %q",
				name, oq.Unit, q.Unit)
		}
	}
	t.time = append(t.time, other.time...)
	for _, name := range t.names {
		q := t.cols[name]
		q.Data = append(q.Data, other.cols[name].Data...)
	}
	return nil
}
