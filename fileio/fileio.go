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

// Package fileio loads, saves and validates heliophysics time-series
// files. One handler and one validator exist per supported format
// (CDF, NetCDF, FITS); selection happens by file extension.
package fileio

import (
	"fmt"
	"path/filepath"

	"github.com/heliomodel/scidata/timeseries"
)

// Handler performs format-specific persistence of a time-series table.
type Handler interface {
	// LoadData parses the named file into a table.
	LoadData(filename string) (*timeseries.Table, error)
	// SaveData writes the table to filePath.
	SaveData(data *timeseries.Table, filePath string) error
}

// Validator checks file-level structural conformance, independent of
// any container invariants.
type Validator interface {
	ValidateFile(filename string) ([]Issue, error)
}

// Format identifies one of the supported file formats.
type Format int

const (
	FormatCDF Format = iota
	FormatNetCDF
	FormatFITS
)

// formatTable carries the handler/validator pair for each format.
var formatTable = []struct {
	ext       string
	name      string
	handler   Handler
	validator Validator
}{
	FormatCDF:    {ext: ".cdf", name: "CDF", handler: &CDFHandler{}, validator: &CDFValidator{}},
	FormatNetCDF: {ext: ".nc", name: "NetCDF", handler: &NetCDFHandler{}, validator: &NetCDFValidator{}},
	FormatFITS:   {ext: ".fits", name: "FITS", handler: &FITSHandler{}, validator: &FITSValidator{}},
}

// UnsupportedFormatError is returned when a file extension does not
// match any supported format.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("fileio: unsupported file type: %q", e.Ext)
}

// FormatForPath selects the format for the given file path by exact,
// case-sensitive match of its extension.
func FormatForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	for f, e := range formatTable {
		if e.ext == ext {
			return Format(f), nil
		}
	}
	return 0, &UnsupportedFormatError{Ext: ext}
}

// Ext returns the file extension associated with the format.
func (f Format) Ext() string { return formatTable[f].ext }

func (f Format) String() string { return formatTable[f].name }

// Handler returns the persistence handler for the format. Handlers
// are stateless and may be shared between containers.
func (f Format) Handler() Handler { return formatTable[f].handler }

// Validator returns the file validator for the format.
func (f Format) Validator() Validator { return formatTable[f].validator }
