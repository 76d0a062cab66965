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

package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   Object
		want string
	}{
		{nil, "null"},
		{Bool(true), "true"},
		{Integer(-7), "-7"},
		{Real(1.5), "1.5"},
		{Real(2), "2."},
		{String("Hello"), "(Hello)"},
		{String("a(b"), `(a\(b)`},
		{String("(ok)"), "((ok))"},
		{String{0, 1, 2}, "<000102>"},
		{Name("Type"), "/Type"},
		{Name("A B#"), "/A#20B#23"},
		{Array{Integer(1), nil, Name("x")}, "[1 null /x]"},
		{Dict{"B": Integer(2), "A": Integer(1), "C": nil}, "<<\n/A 1\n/B 2\n>>"},
		{Reference{Number: 12}, "12 0 R"},
	}
	for _, c := range cases {
		got := Format(c.in)
		if got != c.want {
			t.Errorf("Format(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestScanner(t *testing.T) {
	cases := []struct {
		in   string
		want Object
	}{
		{"null", nil},
		{"false", Bool(false)},
		{"42", Integer(42)},
		{"-.5", Real(-0.5)},
		{"4 0 R", Reference{Number: 4}},
		{"[1 2 R 3]", Array{Reference{Number: 1, Generation: 2}, Integer(3)}},
		{"[1 2 0 R]", Array{Integer(1), Reference{Number: 2}}},
		{"(a\\051b\\\nc)", String("a)bc")},
		{"(x(y)z)", String("x(y)z")},
		{"<48 65 6c6C6f>", String("Hello")},
		{"<41 4>", String("A@")},
		{"/Name#20X", Name("Name X")},
		{"<< /Type /Page /Kids [ 1 0 R ] % comment\n /Count 1 >>", Dict{
			"Type":  Name("Page"),
			"Kids":  Array{Reference{Number: 1}},
			"Count": Integer(1),
		}},
	}
	for _, c := range cases {
		s := newScanner([]byte(c.in), 0, nil)
		got, err := s.ReadObject()
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("%q: unexpected result (-want +got):\n%s", c.in, d)
		}
	}
}

func TestScannerStreamLength(t *testing.T) {
	// The /Length is wrong, the data must extend to "endstream".
	in := "7 0 obj\n<< /Length 3 >>\nstream\nabcdef\nendstream\nendobj\n"
	s := newScanner([]byte(in), 0, nil)
	ref, obj, err := s.ReadIndirectObject()
	if err != nil {
		t.Fatal(err)
	}
	if ref.Number != 7 {
		t.Errorf("wrong object number %d", ref.Number)
	}
	stm, ok := obj.(*Stream)
	if !ok {
		t.Fatalf("expected a stream, got %T", obj)
	}
	data, err := io.ReadAll(stm.R)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "abcdef" {
		t.Errorf("wrong stream data %q", data)
	}
	if stm.Dict["Length"] != Integer(6) {
		t.Errorf("length not corrected: %v", stm.Dict["Length"])
	}
}

// writeTestFile writes a small PDF file with one page.
func writeTestFile(t *testing.T, content string, compress bool) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, V1_7)
	if err != nil {
		t.Fatal(err)
	}

	catRef := w.Alloc()
	pagesRef := w.Alloc()
	pageRef := w.Alloc()
	contentRef := w.Alloc()
	lengthRef := w.Alloc()

	stm, err := NewStream(nil, []byte(content), compress)
	if err != nil {
		t.Fatal(err)
	}
	length := stm.Dict["Length"]
	stm.Dict["Length"] = lengthRef

	objs := []struct {
		ref Reference
		obj Object
	}{
		{catRef, Dict{"Type": Name("Catalog"), "Pages": pagesRef}},
		{pagesRef, Dict{
			"Type":     Name("Pages"),
			"Kids":     Array{pageRef},
			"Count":    Integer(1),
			"MediaBox": Array{Integer(0), Integer(0), Integer(200), Integer(100)},
		}},
		{pageRef, Dict{
			"Type":     Name("Page"),
			"Parent":   pagesRef,
			"Contents": contentRef,
		}},
		{contentRef, stm},
		{lengthRef, length},
	}
	for _, o := range objs {
		err = w.Put(o.ref, o.obj)
		if err != nil {
			t.Fatal(err)
		}
	}

	err = w.Close(Dict{"Root": catRef, "ID": Array{String("abc"), String("def")}})
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWriteRead(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress=%t", compress), func(t *testing.T) {
			const content = "0 0 m 10 10 l S\n"
			data := writeTestFile(t, content, compress)

			r, err := NewReader(data)
			if err != nil {
				t.Fatal(err)
			}
			if r.Version != V1_7 {
				t.Errorf("wrong version %s", r.Version)
			}

			catalog, err := r.Catalog()
			if err != nil {
				t.Fatal(err)
			}
			pages, err := r.GetDict(catalog["Pages"])
			if err != nil {
				t.Fatal(err)
			}
			if n, _ := r.GetInt(pages["Count"]); n != 1 {
				t.Errorf("wrong page count %d", n)
			}
			kids, err := r.GetArray(pages["Kids"])
			if err != nil || len(kids) != 1 {
				t.Fatalf("unexpected /Kids %v (err=%v)", kids, err)
			}
			page, err := r.GetDict(kids[0])
			if err != nil {
				t.Fatal(err)
			}

			obj, err := r.Resolve(page["Contents"])
			if err != nil {
				t.Fatal(err)
			}
			stm, ok := obj.(*Stream)
			if !ok {
				t.Fatalf("expected a stream, got %T", obj)
			}
			body, err := decodeStream(stm, r.Resolve)
			if err != nil {
				t.Fatal(err)
			}
			if string(body) != content {
				t.Errorf("wrong content %q", body)
			}

			if d := cmp.Diff(Array{String("abc"), String("def")}, r.Trailer["ID"]); d != "" {
				t.Errorf("wrong /ID (-want +got):\n%s", d)
			}
		})
	}
}

func TestResolveMissing(t *testing.T) {
	data := writeTestFile(t, "", false)
	r, err := NewReader(data)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := r.Resolve(Reference{Number: 99})
	if err != nil {
		t.Fatal(err)
	}
	if obj != nil {
		t.Errorf("expected nil, got %v", obj)
	}
}

// TestObjectStream reads a file which uses a cross-reference stream and an
// object stream.
func TestObjectStream(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.5\n")

	// object 1: the object stream, holding objects 2 (catalog) and 3 (pages)
	objData := "<< /Type /Catalog /Pages 3 0 R >> << /Type /Pages /Kids [] /Count 0 >>"
	header := "2 0 3 34 "
	body := header + objData
	zbuf := &bytes.Buffer{}
	zw := zlib.NewWriter(zbuf)
	zw.Write([]byte(body))
	zw.Close()

	pos1 := buf.Len()
	fmt.Fprintf(buf, "1 0 obj\n<< /Type /ObjStm /N 2 /First %d /Filter /FlateDecode /Length %d >>\nstream\n",
		len(header), zbuf.Len())
	buf.Write(zbuf.Bytes())
	buf.WriteString("\nendstream\nendobj\n")

	// object 4: the xref stream, W = [1 2 1], predictor 12 (PNG Up)
	rows := [][]byte{
		{0, 0, 0, 255},
		{1, byte(pos1 >> 8), byte(pos1), 0},
		{2, 0, 1, 0},
		{2, 0, 1, 1},
		{1, 0, 0, 0}, // patched below
	}
	pos4 := buf.Len()
	rows[4][1] = byte(pos4 >> 8)
	rows[4][2] = byte(pos4)
	var raw []byte
	prev := make([]byte, 4)
	for _, row := range rows {
		raw = append(raw, 2)
		for i := range row {
			raw = append(raw, row[i]-prev[i])
		}
		prev = row
	}
	zbuf.Reset()
	zw = zlib.NewWriter(zbuf)
	zw.Write(raw)
	zw.Close()

	fmt.Fprintf(buf, "4 0 obj\n<< /Type /XRef /Size 5 /W [1 2 1] /Root 2 0 R"+
		" /Filter /FlateDecode /DecodeParms << /Predictor 12 /Columns 4 >> /Length %d >>\nstream\n",
		zbuf.Len())
	buf.Write(zbuf.Bytes())
	buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", pos4)

	r, err := NewReader(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := r.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if catalog["Type"] != Name("Catalog") {
		t.Errorf("wrong catalog %v", catalog)
	}
	pages, err := r.GetDict(catalog["Pages"])
	if err != nil {
		t.Fatal(err)
	}
	want := Dict{"Type": Name("Pages"), "Kids": Array{}, "Count": Integer(0)}
	if d := cmp.Diff(want, pages); d != "" {
		t.Errorf("wrong pages dict (-want +got):\n%s", d)
	}
}

func TestEncrypted(t *testing.T) {
	data := writeTestFile(t, "", false)
	data = bytes.Replace(data, []byte("/ID"), []byte("/Encrypt 1 0 R /ID"), 1)
	_, err := NewReader(data)
	if !errors.Is(err, ErrEncrypted) {
		t.Errorf("expected ErrEncrypted, got %v", err)
	}
}

func TestCopier(t *testing.T) {
	data := writeTestFile(t, "BT ET\n", true)
	r, err := NewReader(data)
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := r.Catalog()
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	w, err := NewWriter(out, V1_7)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCopier(w, r)

	// The page refers back to its parent, the copier must handle the loop.
	newCat, err := c.Copy(catalog)
	if err != nil {
		t.Fatal(err)
	}
	catRef := w.Alloc()
	err = w.Put(catRef, newCat)
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close(Dict{"Root": catRef})
	if err != nil {
		t.Fatal(err)
	}

	r2, err := NewReader(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	cat2, err := r2.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	pages, err := r2.GetDict(cat2["Pages"])
	if err != nil {
		t.Fatal(err)
	}
	kids, _ := r2.GetArray(pages["Kids"])
	if len(kids) != 1 {
		t.Fatalf("wrong number of kids: %d", len(kids))
	}
	page, err := r2.GetDict(kids[0])
	if err != nil {
		t.Fatal(err)
	}
	obj, err := r2.Resolve(page["Contents"])
	if err != nil {
		t.Fatal(err)
	}
	body, err := decodeStream(obj.(*Stream), r2.Resolve)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "BT ET\n" {
		t.Errorf("wrong content %q", body)
	}
}

func TestPNGUnfilter(t *testing.T) {
	// one row each of filter types None, Sub, Up, Average, Paeth
	in := []byte{
		0, 10, 20, 30,
		1, 1, 1, 1,
		2, 1, 1, 1,
		3, 2, 2, 2,
		4, 0, 0, 0,
	}
	got, err := pngUnfilter(in, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		10, 20, 30,
		1, 2, 3,
		2, 3, 4,
		3, 5, 6,
		3, 5, 6,
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected result (-want +got):\n%s", d)
	}
}
