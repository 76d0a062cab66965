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

// Package graphics writes PDF content streams.
//
// The drawing operations needed by page actions are collected in the
// [Sink] interface.  [Writer] implements Sink by writing PDF operators to
// an io.Writer, and [Recorder] implements Sink by recording the calls,
// which is useful for testing.
package graphics

import (
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpage/color"
	"seehuhn.de/go/pdfpage/pdf"
)

// Resource is an object which is referenced by name from a content stream,
// and which is written to the PDF file when the document is saved.
type Resource interface {
	// Embed writes the resource to w and returns a reference
	// to the top-level object.
	Embed(w *pdf.Writer) (pdf.Reference, error)
}

// Font is a font resource which can be used with [Sink.TextShow].
type Font interface {
	Resource

	// Encode converts a text string into the character codes used by
	// the font.
	Encode(s string) pdf.String
}

// XObject is an external object, like an image, which can be drawn using
// [Sink.DrawXObject].
type XObject interface {
	Resource
}

// Sink receives the low-level drawing operations for one content stream.
//
// Errors are sticky: once an operation fails, the following operations are
// ignored and Err returns the first error.
type Sink interface {
	PushGraphicsState()
	PopGraphicsState()
	Transform(m matrix.Matrix)

	SetLineWidth(width float64)
	SetFillColor(c color.RGB)
	SetStrokeColor(c color.RGB)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	Rectangle(x, y, width, height float64)
	Fill()
	Stroke()

	TextBegin()
	TextEnd()
	TextSetFont(f Font, size float64)
	TextFirstLine(x, y float64)
	TextShow(s string)

	// DrawXObject draws obj scaled to the rectangle with lower-left
	// corner (x, y) and the given width and height.
	DrawXObject(obj XObject, x, y, width, height float64)

	Err() error
}
