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

// Package units maps the unit strings carried by heliophysics data
// files to SI dimensions so that measurements can be checked for
// dimensional agreement.
package units

import (
	"fmt"
	"strings"

	"github.com/ctessum/unit"
)

// UnknownUnitError is returned when a unit string is not in the
// package vocabulary.
type UnknownUnitError struct {
	Name string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("units: unknown unit %q", e.Name)
}

// vocabulary maps base unit spellings to their SI dimensions. Scale
// prefixes are handled separately; only dimensions matter here.
var vocabulary = map[string]unit.Dimensions{
	"":        unit.Dimless,
	"counts":  unit.Dimless,
	"count":   unit.Dimless,
	"dn":      unit.Dimless, // data number
	"percent": unit.Dimless,
	"%":       unit.Dimless,

	"s":   {unit.TimeDim: 1},
	"sec": {unit.TimeDim: 1},
	"min": {unit.TimeDim: 1},
	"h":   {unit.TimeDim: 1},

	"m":  {unit.LengthDim: 1},
	"au": {unit.LengthDim: 1},
	"re": {unit.LengthDim: 1}, // Earth radii

	"g":  {unit.MassDim: 1},
	"kg": {unit.MassDim: 1},

	"k": {unit.TemperatureDim: 1},
	"a": {unit.CurrentDim: 1},

	"t":     {unit.MassDim: 1, unit.CurrentDim: -1, unit.TimeDim: -2},
	"gauss": {unit.MassDim: 1, unit.CurrentDim: -1, unit.TimeDim: -2},

	"hz": {unit.TimeDim: -1},

	"ev": unit.Joule,
	"j":  unit.Joule,

	"v": {unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3, unit.CurrentDim: -1},
	"w": {unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3},

	"deg": {unit.AngleDim: 1},
	"rad": {unit.AngleDim: 1},

	"cc": {unit.LengthDim: 3},
}

// prefixes are the metric scale prefixes stripped before vocabulary
// lookup. Order matters: longer spellings first.
var prefixes = []string{"milli", "micro", "nano", "pico", "kilo", "mega", "giga", "μ", "u", "n", "p", "f", "m", "c", "k", "M", "G", "T"}

// Dimensions resolves a unit string such as "nT", "counts" or "km/s"
// to its SI dimensions. Compound units may combine base units with
// "/" (division), "*" or whitespace (multiplication) and integer
// exponents written with "^" or as a trailing digit ("m2", "s-1").
func Dimensions(name string) (unit.Dimensions, error) {
	s := strings.TrimSpace(name)
	if d, ok := lookup(s); ok {
		return d, nil
	}
	result := unit.Dimensions{}
	sign := 1
	for _, tok := range tokenize(s) {
		if tok == "/" {
			sign = -sign
			continue
		}
		d, exp, err := parseTerm(tok)
		if err != nil {
			return nil, &UnknownUnitError{Name: name}
		}
		for dim, p := range d {
			result[dim] += sign * exp * p
		}
	}
	for dim, p := range result {
		if p == 0 {
			delete(result, dim)
		}
	}
	return result, nil
}

// Compatible reports whether two unit strings have the same SI
// dimensions. Unit strings outside the vocabulary are compatible only
// with themselves, spelled identically.
func Compatible(a, b string) bool {
	da, errA := Dimensions(a)
	db, errB := Dimensions(b)
	if errA != nil || errB != nil {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return da.Matches(db)
}

// Known reports whether the unit string resolves in the vocabulary.
func Known(name string) bool {
	_, err := Dimensions(name)
	return err == nil
}

func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch r {
		case '/':
			flush()
			toks = append(toks, "/")
		case '*', ' ', '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// parseTerm resolves a single token like "km", "m^2", "s-1" or "m2"
// to dimensions and an integer exponent.
func parseTerm(tok string) (unit.Dimensions, int, error) {
	base := tok
	exp := 1
	if i := strings.IndexByte(tok, '^'); i >= 0 {
		base = tok[:i]
		if _, err := fmt.Sscanf(tok[i+1:], "%d", &exp); err != nil {
			return nil, 0, err
		}
	} else {
		// Trailing exponent without a caret: "m2", "s-2".
		j := len(tok)
		for j > 0 && (tok[j-1] >= '0' && tok[j-1] <= '9') {
			j--
		}
		if j > 0 && j < len(tok) && tok[j-1] == '-' {
			j--
		}
		if j < len(tok) {
			if _, err := fmt.Sscanf(tok[j:], "%d", &exp); err != nil {
				return nil, 0, err
			}
			base = tok[:j]
		}
	}
	d, ok := lookup(base)
	if !ok {
		return nil, 0, fmt.Errorf("units: unknown base unit %q", base)
	}
	return d, exp, nil
}

// lookup resolves a single base unit, trying the bare spelling first
// and then stripping one metric prefix.
func lookup(s string) (unit.Dimensions, bool) {
	ls := strings.ToLower(s)
	if d, ok := vocabulary[ls]; ok {
		return d, true
	}
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(s, p)
		if !ok || rest == "" {
			continue
		}
		if d, ok := vocabulary[strings.ToLower(rest)]; ok {
			return d, true
		}
	}
	return nil, false
}
