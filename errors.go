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

package scidata

import (
	"errors"
	"fmt"

	"github.com/heliomodel/scidata/fileio"
)

// UnsupportedFormatError is returned when a file extension does not
// match any supported format.
type UnsupportedFormatError = fileio.UnsupportedFormatError

// ShapeError is returned when a table does not have the structure a
// ScienceData requires.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "scidata: invalid shape: " + e.Reason
}

// MissingUnitError is returned when a non-time column does not carry
// a physical unit.
type MissingUnitError struct {
	Column string
}

func (e *MissingUnitError) Error() string {
	return fmt.Sprintf("scidata: column %q must be a quantity with a unit assigned", e.Column)
}

// MissingColumnError is returned on access to a column that does not
// exist.
type MissingColumnError struct {
	Name string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("scidata: no measurement named %q", e.Name)
}

// TypeMismatchError is returned when a constructor argument is not of
// a usable kind.
type TypeMismatchError struct {
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return "scidata: " + e.Reason
}

// ErrNoHandler is returned by Save when no persistence handler has
// been configured.
var ErrNoHandler = errors.New("scidata: no handler specified for saving data")
