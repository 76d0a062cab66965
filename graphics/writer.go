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

package graphics

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpage/color"
	"seehuhn.de/go/pdfpage/pdf"
)

// Writer writes a PDF content stream.
type Writer struct {
	Content   io.Writer
	Resources *Resources

	State
	stack []State

	err           error
	currentObject objectType
	nesting       []pairType

	resName map[Resource]pdf.Name
	isUsed  func(cat Category, name pdf.Name) bool
}

// Resources lists the resources used by a content stream, by category.
type Resources struct {
	Font    map[pdf.Name]Resource
	XObject map[pdf.Name]Resource
}

// Category is a resource category.  The values correspond to the entries of
// a PDF resource dictionary.
type Category pdf.Name

// These are the resource categories used by [Writer].
const (
	CatFont    Category = "Font"
	CatXObject Category = "XObject"
)

// State holds the graphics parameters tracked by a [Writer].
type State struct {
	// CTM is the current transformation matrix, relative to the
	// coordinate system at the start of the content stream.
	CTM matrix.Matrix

	LineWidth   float64
	FillColor   color.RGB
	StrokeColor color.RGB

	TextFont     Font
	TextFontSize float64

	Set StateBits
}

// StateBits records which parameters in a [State] have been set explicitly.
type StateBits uint8

// These are the parameters tracked in [State.Set].
const (
	StateLineWidth StateBits = 1 << iota
	StateFillColor
	StateStrokeColor
	StateTextFont
)

type pairType byte

const (
	pairTypeQ  pairType = iota + 1 // q ... Q
	pairTypeBT                     // BT ... ET
)

// See Figure 9 (p. 113) of PDF 32000-1:2008.
type objectType int

const (
	objPage objectType = 1 << iota
	objPath
	objText
)

func (s objectType) String() string {
	switch s {
	case objPage:
		return "page"
	case objPath:
		return "path"
	case objText:
		return "text"
	default:
		return fmt.Sprintf("objectType(%d)", int(s))
	}
}

// NewWriter allocates a new Writer object.
//
// If isUsed is not nil, it is consulted when new resource names are
// generated, so that names already present in an existing resource
// dictionary are not reused.
func NewWriter(out io.Writer, isUsed func(cat Category, name pdf.Name) bool) *Writer {
	return &Writer{
		Content: out,
		Resources: &Resources{
			Font:    make(map[pdf.Name]Resource),
			XObject: make(map[pdf.Name]Resource),
		},
		State:         State{CTM: matrix.Identity},
		currentObject: objPage,
		resName:       make(map[Resource]pdf.Name),
		isUsed:        isUsed,
	}
}

// Err returns the first error which occurred while writing the content
// stream.
func (w *Writer) Err() error {
	return w.err
}

// isValid returns true, if the current graphics object is one of the given
// types and if no error has occurred so far.  Otherwise it sets w.err and
// returns false.
func (w *Writer) isValid(cmd string, ss objectType) bool {
	if w.err != nil {
		return false
	}
	if w.currentObject&ss != 0 {
		return true
	}
	w.err = fmt.Errorf("unexpected state %q for %q", w.currentObject, cmd)
	return false
}

func (w *Writer) isSet(bits StateBits) bool {
	return w.Set&bits == bits
}

// resourceName returns the name under which res is listed in the resource
// dictionary, allocating a new name if needed.
func (w *Writer) resourceName(cat Category, res Resource) pdf.Name {
	if name, ok := w.resName[res]; ok {
		return name
	}

	var dict map[pdf.Name]Resource
	var prefix string
	switch cat {
	case CatFont:
		dict, prefix = w.Resources.Font, "F"
	case CatXObject:
		dict, prefix = w.Resources.XObject, "Im"
	default:
		panic("invalid resource category")
	}

	var name pdf.Name
	for k := len(dict) + 1; ; k++ {
		name = pdf.Name(prefix + strconv.Itoa(k))
		if _, used := dict[name]; used {
			continue
		}
		if w.isUsed != nil && w.isUsed(cat, name) {
			continue
		}
		break
	}

	dict[name] = res
	w.resName[res] = name
	return name
}

// format formats an operand with at most three decimals.  Trailing zeros
// and the zero before the decimal point are omitted, so 0.5 becomes ".5".
func format(x float64) string {
	s := strconv.FormatFloat(x, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	switch {
	case s == "-0":
		return "0"
	case strings.HasPrefix(s, "0."):
		return s[1:]
	case strings.HasPrefix(s, "-0."):
		return "-" + s[2:]
	}
	return s
}
