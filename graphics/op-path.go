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

import "fmt"

// MoveTo starts a new path at the given coordinates.
//
// This implements the PDF graphics operator "m".
func (w *Writer) MoveTo(x, y float64) {
	if !w.isValid("MoveTo", objPage|objPath) {
		return
	}
	w.currentObject = objPath
	_, w.err = fmt.Fprintln(w.Content, format(x), format(y), "m")
}

// LineTo appends a straight line segment to the current path.
// If no path is under construction, a new path is started at (x, y).
//
// This implements the PDF graphics operator "l".
func (w *Writer) LineTo(x, y float64) {
	if w.err == nil && w.currentObject == objPage {
		w.MoveTo(x, y)
		return
	}
	if !w.isValid("LineTo", objPath) {
		return
	}
	_, w.err = fmt.Fprintln(w.Content, format(x), format(y), "l")
}

// Rectangle appends a rectangle to the current path as a closed subpath.
//
// This implements the PDF graphics operator "re".
func (w *Writer) Rectangle(x, y, width, height float64) {
	if !w.isValid("Rectangle", objPage|objPath) {
		return
	}
	w.currentObject = objPath
	_, w.err = fmt.Fprintln(w.Content, format(x), format(y), format(width), format(height), "re")
}

// Stroke strokes the current path.  Without a path, nothing is drawn.
//
// This implements the PDF graphics operator "S".
func (w *Writer) Stroke() {
	if w.currentObject == objPage {
		return
	}
	if !w.isValid("Stroke", objPath) {
		return
	}
	w.currentObject = objPage
	_, w.err = fmt.Fprintln(w.Content, "S")
}

// Fill fills the current path, using the nonzero winding number rule.
// Without a path, nothing is drawn.
//
// This implements the PDF graphics operator "f".
func (w *Writer) Fill() {
	if w.currentObject == objPage {
		return
	}
	if !w.isValid("Fill", objPath) {
		return
	}
	w.currentObject = objPage
	_, w.err = fmt.Fprintln(w.Content, "f")
}

// endPath ends a path which has been constructed but not painted.
//
// This implements the PDF graphics operator "n".
func (w *Writer) endPath() {
	if w.err != nil || w.currentObject != objPath {
		return
	}
	w.currentObject = objPage
	_, w.err = fmt.Fprintln(w.Content, "n")
}
