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

	"seehuhn.de/go/geom/matrix"
)

// DrawXObject draws an XObject, scaled to fill the rectangle with
// lower-left corner (x, y) and the given width and height.
//
// This uses the PDF graphics operators "q", "cm", "Do" and "Q".
func (w *Writer) DrawXObject(obj XObject, x, y, width, height float64) {
	w.endPath()
	if !w.isValid("DrawXObject", objPage) {
		return
	}
	if obj == nil {
		w.err = fmt.Errorf("DrawXObject: missing XObject")
		return
	}

	w.PushGraphicsState()
	w.Transform(matrix.Matrix{width, 0, 0, height, x, y})
	if w.err != nil {
		return
	}
	name := w.resourceName(CatXObject, obj)
	w.err = name.PDF(w.Content)
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.Content, "", "Do")
	w.PopGraphicsState()
}
