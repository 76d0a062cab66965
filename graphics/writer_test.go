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
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpage/color"
	"seehuhn.de/go/pdfpage/pdf"
)

type testFont struct{}

func (testFont) Embed(w *pdf.Writer) (pdf.Reference, error) { return pdf.Reference{}, nil }
func (testFont) Encode(s string) pdf.String                 { return pdf.String(s) }

type testImage struct{ id int }

func (*testImage) Embed(w *pdf.Writer) (pdf.Reference, error) { return pdf.Reference{}, nil }

func TestWriterPath(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, nil)

	w.Rectangle(10, 10, 50, 20)
	w.SetFillColor(color.RGB{G: 128})
	w.Fill()

	w.SetLineWidth(2)
	w.SetStrokeColor(color.RGB{R: 255})
	w.MoveTo(0, 0)
	w.SetLineWidth(2)
	w.SetStrokeColor(color.RGB{R: 255})
	w.LineTo(100, 0.5)
	w.Stroke()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	want := `10 10 50 20 re
0 .502 0 rg
f
2 w
1 0 0 RG
0 0 m
100 .5 l
S
`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("unexpected content (-want +got):\n%s", d)
	}
}

func TestWriterText(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, nil)

	w.PushGraphicsState()
	w.Transform(matrix.Matrix{1, 0, 0, -1, 0, 0})
	w.TextBegin()
	w.TextSetFont(testFont{}, 12)
	w.SetFillColor(color.Black)
	w.TextFirstLine(10, -30)
	w.TextShow("Hi")
	w.TextEnd()
	w.PopGraphicsState()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	want := `q
1 0 0 -1 0 0 cm
BT
/F1 12 Tf
0 0 0 rg
10 -30 Td
(Hi) Tj
ET
Q
`
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("unexpected content (-want +got):\n%s", d)
	}
	if len(w.Resources.Font) != 1 || w.Resources.Font["F1"] == nil {
		t.Errorf("unexpected font resources %v", w.Resources.Font)
	}
}

func TestWriterXObject(t *testing.T) {
	buf := &bytes.Buffer{}
	isUsed := func(cat Category, name pdf.Name) bool {
		return cat == CatXObject && name == "Im1"
	}
	w := NewWriter(buf, isUsed)

	a := &testImage{1}
	b := &testImage{2}
	w.DrawXObject(a, 1, 2, 30, 40)
	w.DrawXObject(b, 0, 0, 1, 1)
	w.DrawXObject(a, 0, 0, 1, 1)

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	wantLines := []string{
		"q", "30 0 0 40 1 2 cm", "/Im2 Do", "Q",
		"q", "1 0 0 1 0 0 cm", "/Im3 Do", "Q",
		"q", "1 0 0 1 0 0 cm", "/Im2 Do", "Q",
	}
	if d := cmp.Diff(wantLines, lines); d != "" {
		t.Errorf("unexpected content (-want +got):\n%s", d)
	}
	if w.Resources.XObject["Im2"] != a || w.Resources.XObject["Im3"] != b {
		t.Errorf("unexpected XObject resources %v", w.Resources.XObject)
	}
	if w.CTM != matrix.Identity {
		t.Errorf("CTM not restored: %v", w.CTM)
	}
}

func TestWriterStateStack(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, nil)
	w.SetLineWidth(3)
	w.PushGraphicsState()
	w.Transform(matrix.Scale(1, -1))
	w.SetLineWidth(5)
	w.PopGraphicsState()
	if w.LineWidth != 3 {
		t.Errorf("line width not restored: %g", w.LineWidth)
	}
	if w.CTM != matrix.Identity {
		t.Errorf("CTM not restored: %v", w.CTM)
	}
	if w.Err() != nil {
		t.Fatal(w.Err())
	}
}

func TestWriterErrors(t *testing.T) {
	type testCase struct {
		name string
		ops  func(w *Writer)
	}
	cases := []testCase{
		{"unbalanced ET", func(w *Writer) { w.TextEnd() }},
		{"show outside text", func(w *Writer) { w.TextShow("x") }},
		{"negative width", func(w *Writer) { w.SetLineWidth(-1) }},
		{"no font", func(w *Writer) { w.TextBegin(); w.TextShow("x") }},
		{"fill in text", func(w *Writer) { w.TextBegin(); w.Fill() }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWriter(&bytes.Buffer{}, nil)
			c.ops(w)
			if w.Close() == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriterStickyError(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf, nil)
	w.SetLineWidth(-1)
	first := w.Err()
	if first == nil {
		t.Fatal("expected an error")
	}
	w.MoveTo(0, 0)
	w.PushGraphicsState()
	if w.Err() != first {
		t.Errorf("error changed to %v", w.Err())
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriterCompletesStream(t *testing.T) {
	cases := []struct {
		name string
		ops  func(w *Writer)
		want string
	}{
		{"unmatched Q", func(w *Writer) {
			w.PopGraphicsState()
			w.Rectangle(0, 0, 1, 1)
			w.Fill()
		}, "0 0 1 1 re\nf\n"},
		{"open q", func(w *Writer) {
			w.PushGraphicsState()
			w.PushGraphicsState()
			w.Rectangle(0, 0, 1, 1)
			w.Fill()
		}, "q\nq\n0 0 1 1 re\nf\nQ\nQ\n"},
		{"unpainted path", func(w *Writer) {
			w.MoveTo(0, 0)
			w.LineTo(1, 1)
		}, "0 0 m\n1 1 l\nn\n"},
		{"text inside path", func(w *Writer) {
			w.MoveTo(0, 0)
			w.TextBegin()
			w.TextEnd()
			w.Stroke()
		}, "0 0 m\nn\nBT\nET\n"},
		{"q inside path", func(w *Writer) {
			w.Rectangle(0, 0, 2, 2)
			w.PushGraphicsState()
			w.Transform(matrix.Translate(1, 0))
			w.PopGraphicsState()
		}, "0 0 2 2 re\nn\nq\n1 0 0 1 1 0 cm\nQ\n"},
		{"line without move", func(w *Writer) {
			w.LineTo(1, 2)
			w.LineTo(3, 4)
			w.Stroke()
		}, "1 2 m\n3 4 l\nS\n"},
		{"stroke without path", func(w *Writer) {
			w.Stroke()
			w.Fill()
		}, ""},
		{"open text object", func(w *Writer) {
			w.PushGraphicsState()
			w.TextBegin()
		}, "q\nBT\nET\nQ\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			w := NewWriter(buf, nil)
			c.ops(w)
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(c.want, buf.String()); d != "" {
				t.Errorf("unexpected content (-want +got):\n%s", d)
			}
			if w.Depth() != 0 {
				t.Errorf("depth %d after Close", w.Depth())
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Rectangle(10, 10, 50, 20)
	r.SetFillColor(color.RGB{G: 128})
	r.Fill()

	want := []Op{
		{Name: "re", Args: []any{10.0, 10.0, 50.0, 20.0}},
		{Name: "rg", Args: []any{color.RGB{G: 128}}},
		{Name: "f", Args: nil},
	}
	if d := cmp.Diff(want, r.Ops); d != "" {
		t.Errorf("unexpected ops (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]string{"re", "rg", "f"}, r.Names()); d != "" {
		t.Error(d)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		x    float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-1, "-1"},
		{0.5, ".5"},
		{-0.5, "-.5"},
		{128.0 / 255, ".502"},
		{12.34, "12.34"},
		{100, "100"},
		{-0.0001, "0"},
	}
	for _, c := range cases {
		if got := format(c.x); got != c.want {
			t.Errorf("format(%g) = %q, want %q", c.x, got, c.want)
		}
	}
}
