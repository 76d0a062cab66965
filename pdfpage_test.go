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

package pdfpage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/pdfpage/action"
	"seehuhn.de/go/pdfpage/color"
	"seehuhn.de/go/pdfpage/document"
	"seehuhn.de/go/pdfpage/font"
	"seehuhn.de/go/pdfpage/image"
	"seehuhn.de/go/pdfpage/interp"
	"seehuhn.de/go/pdfpage/pdf"
)

func newAssembler() *Assembler {
	fonts := font.Store{FS: fstest.MapFS{
		"fonts/Go.ttf": {Data: goregular.TTF},
	}}
	return &Assembler{
		Fonts:  interp.FontStore(fonts),
		Images: interp.ImageStore(image.Store{}),
	}
}

type pageEvent struct {
	op  string
	err bool
}

type testObserver struct {
	pages   []pageEvent
	actions []action.Kind
}

func (o *testObserver) ActionDone(kind action.Kind)                   { o.actions = append(o.actions, kind) }
func (o *testObserver) ActionSkipped(kind action.Kind, reason string) {}
func (o *testObserver) PageDone(op string, d time.Duration, err error) {
	o.pages = append(o.pages, pageEvent{op, err != nil})
}

type mapStore map[string]*document.Document

func (m mapStore) Open(path string) (*document.Document, error) {
	doc, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return doc, nil
}

// roundTrip writes doc to memory and reads it back.
func roundTrip(t *testing.T, doc *document.Document) *document.Document {
	t.Helper()
	buf := &bytes.Buffer{}
	err := doc.Write(buf, &document.WriteOptions{Compress: true})
	if err != nil {
		t.Fatal(err)
	}
	res, err := document.Read(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func contents(t *testing.T, p *document.Page) string {
	t.Helper()
	data, err := p.Contents()
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCreatePage(t *testing.T) {
	a := newAssembler()
	obs := &testObserver{}
	a.Observer = obs

	actions := []action.Action{
		action.Transform{},
		action.Rectangle{X: 10, Y: 10, Width: 100, Height: 20, Color: color.RGB{R: 255}},
		action.Text{Value: "Hello", FontName: "Go", FontSize: 12, X: 10, Y: 40},
	}
	p, err := a.CreatePage(MediaBox{Width: 200, Height: 300}, actions)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width() != 200 || p.Height() != 300 {
		t.Errorf("wrong page size %gx%g", p.Width(), p.Height())
	}

	doc := document.New()
	doc.AddPage(p)
	doc = roundTrip(t, doc)
	if doc.NumPages() != 1 {
		t.Fatalf("got %d pages, want 1", doc.NumPages())
	}
	p, err = doc.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	body := contents(t, p)
	for _, want := range []string{"1 0 0 -1 0 300 cm", "10 10 100 20 re", "1 0 0 rg", "/F1 12 Tf", "Tj"} {
		if !strings.Contains(body, want) {
			t.Errorf("content stream lacks %q:\n%s", want, body)
		}
	}

	wantPages := []pageEvent{{"create", false}}
	if d := cmp.Diff(wantPages, obs.pages, cmp.AllowUnexported(pageEvent{})); d != "" {
		t.Errorf("page events (-want +got):\n%s", d)
	}
	if len(obs.actions) != 3 {
		t.Errorf("got %d completed actions, want 3", len(obs.actions))
	}
}

func TestCreatePageError(t *testing.T) {
	a := newAssembler()
	obs := &testObserver{}
	a.Observer = obs

	_, err := a.CreatePage(MediaBox{Width: 100, Height: 100}, []action.Action{
		action.Text{Value: "x", FontName: "Missing", FontSize: 10},
	})
	if Classify(err) != FontNotFound {
		t.Errorf("got %v (%s), want FontNotFound", err, Classify(err))
	}
	if len(obs.pages) != 1 || !obs.pages[0].err {
		t.Errorf("unexpected page events %v", obs.pages)
	}
}

func TestCreatePageUnbalanced(t *testing.T) {
	cases := []struct {
		name    string
		actions []action.Action
		want    []string
	}{
		{"restore without save", []action.Action{
			action.Transform{},
			action.RestoreGraphicsState{},
			action.Rectangle{Width: 5, Height: 5},
		}, []string{"1 0 0 -1 0 100 cm", "0 0 5 5 re"}},
		{"save without restore", []action.Action{
			action.SaveGraphicsState{},
			action.Rectangle{Width: 5, Height: 5},
		}, []string{"q\n0 0 5 5 re", "f\nQ\n"}},
		{"path without stroke", []action.Action{
			action.MoveTo{X: 1, Y: 1, StrokeWidth: 1},
			action.LineTo{X: 2, Y: 2, StrokeWidth: 1},
		}, []string{"2 2 l\nn\n"}},
		{"text inside path", []action.Action{
			action.MoveTo{X: 1, Y: 1, StrokeWidth: 1},
			action.LineTo{X: 2, Y: 2, StrokeWidth: 1},
			action.Text{Value: "x", FontName: "Go", FontSize: 10},
			action.Stroke{},
		}, []string{"2 2 l\nn\nBT"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := newAssembler()
			p, err := a.CreatePage(MediaBox{Width: 100, Height: 100}, c.actions)
			if err != nil {
				t.Fatal(err)
			}
			body := contents(t, p)
			for _, want := range c.want {
				if !strings.Contains(body, want) {
					t.Errorf("content stream lacks %q:\n%s", want, body)
				}
			}
			if strings.Count(body, "q\n") != strings.Count(body, "Q\n") {
				t.Errorf("unbalanced q/Q:\n%s", body)
			}
		})
	}
}

func TestModifyPageUnbalanced(t *testing.T) {
	a := newAssembler()
	doc := document.New()
	doc.AddPage(document.NewPage(MediaBox{Width: 100, Height: 100}.Rect()))

	_, err := a.ModifyPage(doc, 0, []action.Action{
		action.Transform{},
		action.RestoreGraphicsState{},
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := doc.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	body := contents(t, p)
	if !strings.Contains(body, "1 0 0 -1 0 100 cm") || strings.Contains(body, "Q") {
		t.Errorf("unexpected content stream:\n%s", body)
	}
}

func TestModifyPage(t *testing.T) {
	a := newAssembler()
	doc := document.New()
	p, err := a.CreatePage(MediaBox{Width: 100, Height: 100}, []action.Action{
		action.Rectangle{X: 0, Y: 0, Width: 10, Height: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc.AddPage(p)

	_, err = a.ModifyPage(doc, 0, []action.Action{
		action.MoveTo{X: 0, Y: 0, StrokeWidth: 2},
		action.LineTo{X: 50, Y: 50, StrokeWidth: 2},
		action.Stroke{},
	})
	if err != nil {
		t.Fatal(err)
	}

	body := contents(t, p)
	if !strings.HasPrefix(body, "q\n") {
		t.Errorf("old content is not wrapped:\n%s", body)
	}
	i := strings.Index(body, "re")
	j := strings.Index(body, "Q\n")
	k := strings.Index(body, "50 50 l")
	if i < 0 || j < i || k < j {
		t.Errorf("unexpected content order:\n%s", body)
	}
}

func TestModifyPageEmptyIsNoop(t *testing.T) {
	a := newAssembler()
	doc := document.New()
	p, err := a.CreatePage(MediaBox{Width: 100, Height: 100}, []action.Action{
		action.Rectangle{Width: 10, Height: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc.AddPage(p)
	before := contents(t, p)
	n := p.NumContentStreams()

	for range 2 {
		_, err = a.ModifyPage(doc, 0, nil)
		if err != nil {
			t.Fatal(err)
		}
	}
	if after := contents(t, p); after != before {
		t.Errorf("content changed:\n%s\n---\n%s", before, after)
	}
	if p.NumContentStreams() != n {
		t.Errorf("got %d content streams, want %d", p.NumContentStreams(), n)
	}
}

func TestModifyPageOutOfRange(t *testing.T) {
	a := newAssembler()
	doc := document.New()
	doc.AddPage(document.NewPage(MediaBox{Width: 10, Height: 10}.Rect()))

	for _, idx := range []int{-1, 1, 5} {
		_, err := a.ModifyPage(doc, idx, nil)
		if !errors.Is(err, document.ErrPageIndexOutOfRange) {
			t.Errorf("index %d: got %v", idx, err)
		}
		if Classify(err) != PageIndexOutOfRange {
			t.Errorf("index %d: got kind %s", idx, Classify(err))
		}
	}

	// no session may be left open
	p, _ := doc.Page(0)
	s, err := p.OpenSession(document.Append)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestModifyPageFailureDiscards(t *testing.T) {
	a := newAssembler()
	doc := document.New()
	p, err := a.CreatePage(MediaBox{Width: 100, Height: 100}, []action.Action{
		action.Rectangle{Width: 10, Height: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc.AddPage(p)
	before := contents(t, p)

	_, err = a.ModifyPage(doc, 0, []action.Action{
		action.Rectangle{Width: 20, Height: 20},
		action.Text{Value: "x", FontName: "Missing", FontSize: 10},
	})
	if err == nil {
		t.Fatal("missing font not detected")
	}
	if after := contents(t, p); after != before {
		t.Errorf("failed run changed the page:\n%s", after)
	}

	// the page must not stay locked
	_, err = a.ModifyPage(doc, 0, nil)
	if err != nil {
		t.Error(err)
	}
}

func TestLoadPage(t *testing.T) {
	a := newAssembler()
	other := document.New()
	p, err := a.CreatePage(MediaBox{Width: 50, Height: 70}, []action.Action{
		action.Rectangle{Width: 5, Height: 5},
	})
	if err != nil {
		t.Fatal(err)
	}
	other.AddPage(p)
	a.Store = mapStore{"other.pdf": other}

	doc := document.New()
	loaded, err := a.LoadPage(doc, 0, "other.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if loaded == p {
		t.Error("loaded page aliases the source page")
	}
	if loaded.Width() != 50 || loaded.Height() != 70 {
		t.Errorf("wrong page size %gx%g", loaded.Width(), loaded.Height())
	}
	doc.AddPage(loaded)

	// load from the current document
	again, err := a.LoadPage(doc, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if contents(t, again) != contents(t, p) {
		t.Error("loaded content differs")
	}

	_, err = a.LoadPage(doc, 3, "")
	if Classify(err) != PageIndexOutOfRange {
		t.Errorf("got %v", err)
	}
	_, err = a.LoadPage(doc, 0, "missing.pdf")
	if Classify(err) != IOFailure {
		t.Errorf("got %v (%s)", err, Classify(err))
	}
}

func TestMeasureText(t *testing.T) {
	a := newAssembler()
	size, err := a.MeasureText("Go", "Hello", 10)
	if err != nil {
		t.Fatal(err)
	}
	if size.Width <= 0 || size.Height <= 0 {
		t.Errorf("implausible size %v", size)
	}
	longer, err := a.MeasureText("Go", "Hello, World", 10)
	if err != nil {
		t.Fatal(err)
	}
	if longer.Width <= size.Width {
		t.Errorf("width %d not larger than %d", longer.Width, size.Width)
	}
	if longer.Height != size.Height {
		t.Errorf("height depends on text: %d vs %d", longer.Height, size.Height)
	}

	_, err = a.MeasureText("Missing", "x", 10)
	if Classify(err) != FontNotFound {
		t.Errorf("got %v", err)
	}
}

func TestDecodeCreate(t *testing.T) {
	req, err := DecodeCreate(map[string]any{
		"mediaBox": map[string]any{"x": 0, "y": 0, "width": 595, "height": 842},
		"actions": []any{
			map[string]any{"type": "transform"},
			map[string]any{"type": "rectangle", "x": 1, "y": 2, "width": 3, "height": 4, "color": "#000000"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := &CreateRequest{
		MediaBox: MediaBox{Width: 595, Height: 842},
		Actions: []action.Action{
			action.Transform{},
			action.Rectangle{X: 1, Y: 2, Width: 3, Height: 4},
		},
	}
	if d := cmp.Diff(want, req); d != "" {
		t.Errorf("request (-want +got):\n%s", d)
	}

	for _, box := range []map[string]any{
		{"x": 0, "y": 0, "width": 0, "height": 10},
		{"x": 0, "y": 0, "width": 10, "height": -5},
	} {
		_, err = DecodeCreate(map[string]any{"mediaBox": box})
		var tErr *action.FieldTypeError
		if !errors.As(err, &tErr) {
			t.Errorf("%v: got %v, want a FieldTypeError", box, err)
		}
	}

	_, err = DecodeCreate(map[string]any{"actions": []any{}})
	if Classify(err) != MissingField {
		t.Errorf("missing mediaBox: got %v", err)
	}
	_, err = DecodeCreate(map[string]any{
		"mediaBox": map[string]any{"x": 0, "y": 0, "width": 10},
	})
	if Classify(err) != MissingField {
		t.Errorf("missing height: got %v", err)
	}
}

func TestDecodeModify(t *testing.T) {
	req, err := DecodeModify(map[string]any{"pageIndex": 2})
	if err != nil {
		t.Fatal(err)
	}
	if req.PageIndex != 2 || len(req.Actions) != 0 {
		t.Errorf("unexpected request %+v", req)
	}

	_, err = DecodeModify(map[string]any{
		"pageIndex": 0,
		"actions":   []any{map[string]any{"type": "text", "x": 0, "y": 0}},
	})
	if Classify(err) != MissingField {
		t.Errorf("got %v", err)
	}

	_, err = DecodeModify(map[string]any{
		"pageIndex": 0,
		"actions": []any{map[string]any{
			"type": "rectangle", "x": 0, "y": 0, "width": 1, "height": 1, "color": "red",
		}},
	})
	if Classify(err) != MalformedColor {
		t.Errorf("got %v", err)
	}
}

func TestDecodeLoad(t *testing.T) {
	req, err := DecodeLoad(map[string]any{"pageIndex": 1, "filePath": "a.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(&LoadRequest{PageIndex: 1, FilePath: "a.pdf"}, req); d != "" {
		t.Error(d)
	}
	_, err = DecodeLoad(map[string]any{})
	if Classify(err) != MissingField {
		t.Errorf("got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, Unknown},
		{errors.New("other"), Unknown},
		{&action.MissingFieldError{Field: "x"}, MissingField},
		{fmt.Errorf("wrapped: %w", &font.NotFoundError{Name: "A"}), FontNotFound},
		{&document.PageIndexError{Index: 3, NumPages: 1}, PageIndexOutOfRange},
		{&image.DecodeError{Path: "a.png", Err: errors.New("bad")}, ImageDecodeFailure},
		{&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, IOFailure},
		{&pdf.MalformedFileError{Err: errors.New("bad")}, IOFailure},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("Classify(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}
