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
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpage/color"
)

// Op is a single operation recorded by a [Recorder].
type Op struct {
	Name string
	Args []any
}

// Recorder is a [Sink] which records all operations.
// Unlike [Writer], a Recorder does not check operator nesting,
// and it never reports an error.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) add(name string, args ...any) {
	r.Ops = append(r.Ops, Op{Name: name, Args: args})
}

func (r *Recorder) PushGraphicsState()        { r.add("q") }
func (r *Recorder) PopGraphicsState()         { r.add("Q") }
func (r *Recorder) Transform(m matrix.Matrix) { r.add("cm", m) }

func (r *Recorder) SetLineWidth(width float64)  { r.add("w", width) }
func (r *Recorder) SetFillColor(c color.RGB)    { r.add("rg", c) }
func (r *Recorder) SetStrokeColor(c color.RGB)  { r.add("RG", c) }
func (r *Recorder) MoveTo(x, y float64)         { r.add("m", x, y) }
func (r *Recorder) LineTo(x, y float64)         { r.add("l", x, y) }
func (r *Recorder) Fill()                       { r.add("f") }
func (r *Recorder) Stroke()                     { r.add("S") }
func (r *Recorder) TextBegin()                  { r.add("BT") }
func (r *Recorder) TextEnd()                    { r.add("ET") }
func (r *Recorder) TextFirstLine(x, y float64)  { r.add("Td", x, y) }
func (r *Recorder) TextShow(s string)           { r.add("Tj", s) }
func (r *Recorder) Err() error                  { return nil }
func (r *Recorder) TextSetFont(f Font, size float64) {
	r.add("Tf", f, size)
}

func (r *Recorder) Rectangle(x, y, width, height float64) {
	r.add("re", x, y, width, height)
}

func (r *Recorder) DrawXObject(obj XObject, x, y, width, height float64) {
	r.add("Do", obj, x, y, width, height)
}

// Names returns the names of all recorded operations.
func (r *Recorder) Names() []string {
	res := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		res[i] = op.Name
	}
	return res
}

var (
	_ Sink = (*Writer)(nil)
	_ Sink = (*Recorder)(nil)
)
