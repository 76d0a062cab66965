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
)

// TextBegin starts a new text object.
//
// This implements the PDF graphics operator "BT".
func (w *Writer) TextBegin() {
	w.endPath()
	if !w.isValid("TextBegin", objPage) {
		return
	}
	w.currentObject = objText
	w.nesting = append(w.nesting, pairTypeBT)
	_, w.err = fmt.Fprintln(w.Content, "BT")
}

// TextEnd ends the current text object.
//
// This implements the PDF graphics operator "ET".
func (w *Writer) TextEnd() {
	if !w.isValid("TextEnd", objText) {
		return
	}
	if len(w.nesting) == 0 || w.nesting[len(w.nesting)-1] != pairTypeBT {
		w.err = errNoBT
		return
	}
	w.nesting = w.nesting[:len(w.nesting)-1]
	w.currentObject = objPage
	_, w.err = fmt.Fprintln(w.Content, "ET")
}

// TextSetFont sets the font and font size.
//
// This implements the PDF graphics operator "Tf".
func (w *Writer) TextSetFont(f Font, size float64) {
	if !w.isValid("TextSetFont", objText|objPage) {
		return
	}
	if f == nil {
		w.err = fmt.Errorf("TextSetFont: missing font")
		return
	}
	name := w.resourceName(CatFont, f)
	w.TextFont = f
	w.TextFontSize = size
	w.Set |= StateTextFont

	w.err = name.PDF(w.Content)
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.Content, "", format(size), "Tf")
}

// TextFirstLine moves to the start of the next line of text.
// At the start of a text object this sets the text position.
//
// This implements the PDF graphics operator "Td".
func (w *Writer) TextFirstLine(x, y float64) {
	if !w.isValid("TextFirstLine", objText) {
		return
	}
	_, w.err = fmt.Fprintln(w.Content, format(x), format(y), "Td")
}

// TextShow draws a string using the current font.
//
// This implements the PDF graphics operator "Tj".
func (w *Writer) TextShow(s string) {
	if !w.isValid("TextShow", objText) {
		return
	}
	if !w.isSet(StateTextFont) {
		w.err = fmt.Errorf("TextShow: no font set")
		return
	}
	w.err = w.TextFont.Encode(s).PDF(w.Content)
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintln(w.Content, " Tj")
}
