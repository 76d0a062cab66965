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
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"
)

// PushGraphicsState saves the current graphics state.
//
// This implements the PDF graphics operator "q".
func (w *Writer) PushGraphicsState() {
	w.endPath()
	if !w.isValid("PushGraphicsState", objPage|objText) {
		return
	}
	w.stack = append(w.stack, w.State)
	w.nesting = append(w.nesting, pairTypeQ)
	_, w.err = fmt.Fprintln(w.Content, "q")
}

// PopGraphicsState restores the previous graphics state.
// A call without a matching PushGraphicsState is ignored.
//
// This implements the PDF graphics operator "Q".
func (w *Writer) PopGraphicsState() {
	w.endPath()
	if !w.isValid("PopGraphicsState", objPage|objText) {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairTypeQ {
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	n := len(w.stack) - 1
	w.State = w.stack[n]
	w.stack = w.stack[:n]
	_, w.err = fmt.Fprintln(w.Content, "Q")
}

// Transform applies a transformation matrix to the coordinate system.
// The new CTM is m applied before the current CTM.
//
// This implements the PDF graphics operator "cm".
func (w *Writer) Transform(m matrix.Matrix) {
	w.endPath()
	if !w.isValid("Transform", objPage) {
		return
	}
	w.CTM = m.Mul(w.CTM)
	_, w.err = fmt.Fprintln(w.Content,
		format(m[0]), format(m[1]),
		format(m[2]), format(m[3]),
		format(m[4]), format(m[5]), "cm")
}

// SetLineWidth sets the line width.
//
// A width set while a path is under construction applies when the path
// is stroked.
//
// This implements the PDF graphics operator "w".
func (w *Writer) SetLineWidth(width float64) {
	if !w.isValid("SetLineWidth", objPage|objPath|objText) {
		return
	}
	if width < 0 {
		w.err = fmt.Errorf("SetLineWidth: negative width %f", width)
		return
	}
	if w.isSet(StateLineWidth) && w.LineWidth == width {
		return
	}
	w.LineWidth = width
	w.Set |= StateLineWidth
	_, w.err = fmt.Fprintln(w.Content, format(width), "w")
}

// Depth returns the number of open "q" and "BT" operators.
func (w *Writer) Depth() int {
	return len(w.nesting)
}

// Close ends the content stream.  An unpainted path is discarded, and
// open text objects and saved graphics states are closed, so that the
// output is a complete content stream.  Close returns the first error
// which occurred while writing.
func (w *Writer) Close() error {
	w.endPath()
	for len(w.nesting) > 0 && w.err == nil {
		if w.nesting[len(w.nesting)-1] == pairTypeBT {
			w.TextEnd()
		} else {
			w.PopGraphicsState()
		}
	}
	return w.err
}

var errNoBT = errors.New("TextEnd: no matching TextBegin")
