// seehuhn.de/go/pdfpage - draw lists of page actions into PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package color implements the RGB colors used by page actions.
//
// Colors are given as "#RRGGBB" hex strings, and are written to
// content streams in the DeviceRGB color space.
package color

import (
	"errors"
	"fmt"
	"strconv"
)

// RGB is a color in the DeviceRGB color space, with 8 bits per channel.
type RGB struct {
	R, G, B uint8
}

// Black is the color #000000.
var Black = RGB{}

// ErrMalformed is matched by errors returned from [ParseHex]
// for strings which are not of the form "#RRGGBB".
var ErrMalformed = errors.New("malformed color")

// MalformedError describes a color string which could not be parsed.
type MalformedError struct {
	Input string
}

func (err *MalformedError) Error() string {
	return fmt.Sprintf("malformed color %q, expected #RRGGBB", err.Input)
}

// Is allows to use errors.Is(err, ErrMalformed).
func (err *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// ParseHex parses a color of the form "#RRGGBB".
// Both upper and lower case hex digits are accepted.
func ParseHex(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, &MalformedError{Input: s}
	}
	var c [3]uint8
	for i := range c {
		x, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return RGB{}, &MalformedError{Input: s}
		}
		c[i] = uint8(x)
	}
	return RGB{R: c[0], G: c[1], B: c[2]}, nil
}

// String returns the color in "#rrggbb" notation.
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Values returns the red, green and blue components in the range [0, 1].
func (c RGB) Values() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}
