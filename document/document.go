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

// Package document holds the pages of a PDF document while they are being
// assembled.
//
// A [Document] is either created empty or read from an existing PDF file.
// Only the page tree is interpreted.  All other objects reachable from a
// page are copied unchanged when the document is written.
// New content is added to a page through a [Session].
package document

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpage/pdf"
)

var (
	// ErrPageIndexOutOfRange is matched by errors for invalid page numbers.
	ErrPageIndexOutOfRange = errors.New("page index out of range")

	// ErrSessionClosed is returned when a session is closed twice.
	ErrSessionClosed = errors.New("session already closed")

	// ErrSessionOpen is returned when a second session is opened on a page.
	ErrSessionOpen = errors.New("page already has an open session")
)

// PageIndexError is returned by [Document.Page] for invalid page indices.
type PageIndexError struct {
	Index    int
	NumPages int
}

func (err *PageIndexError) Error() string {
	return fmt.Sprintf("page index %d out of range [0, %d)", err.Index, err.NumPages)
}

// Is reports whether target is [ErrPageIndexOutOfRange].
func (err *PageIndexError) Is(target error) bool {
	return target == ErrPageIndexOutOfRange
}

// Document is a PDF document under construction.
//
// A Document is not safe for concurrent use.
type Document struct {
	pages []*Page

	// src is the file the document was read from, or nil.
	src *pdf.Reader
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// Open reads a PDF document from a file.
// The file is read completely and closed before Open returns.
func Open(fname string) (*Document, error) {
	r, err := pdf.Open(fname)
	if err != nil {
		return nil, err
	}
	return fromReader(r)
}

// Read parses a PDF document held in memory.
func Read(data []byte) (*Document, error) {
	r, err := pdf.NewReader(data)
	if err != nil {
		return nil, err
	}
	return fromReader(r)
}

func fromReader(r *pdf.Reader) (*Document, error) {
	catalog, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, &pdf.MalformedFileError{Err: errors.New("missing document catalog")}
	}

	doc := &Document{src: r}
	walker := &pageWalker{r: r, seen: make(map[pdf.Reference]bool)}
	err = walker.walk(catalog["Pages"], pdf.Dict{}, func(p *Page) {
		doc.pages = append(doc.pages, p)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// Page returns the page with the given index.  Pages are numbered from 0.
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, &PageIndexError{Index: i, NumPages: len(d.pages)}
	}
	return d.pages[i], nil
}

// AddPage appends a page to the end of the document.
func (d *Document) AddPage(p *Page) {
	d.pages = append(d.pages, p)
}

// inheritable lists the page attributes which can be inherited from
// the page tree, see section 7.7.3.4 of PDF 32000-1:2008.
var inheritable = []pdf.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// dropped lists page attributes which are not carried over to the output.
// Annotations and article beads refer back to the page object.
var dropped = []pdf.Name{"Type", "Parent", "Annots", "B"}

type pageWalker struct {
	r    *pdf.Reader
	seen map[pdf.Reference]bool
}

func (pw *pageWalker) walk(obj pdf.Object, inherited pdf.Dict, yield func(*Page)) error {
	if ref, ok := obj.(pdf.Reference); ok {
		if pw.seen[ref] {
			return &pdf.MalformedFileError{Err: fmt.Errorf("page tree loop at %s", ref)}
		}
		pw.seen[ref] = true
	}

	node, err := pw.r.GetDict(obj)
	if err != nil {
		return err
	}
	if node == nil {
		return &pdf.MalformedFileError{Err: errors.New("missing page tree node")}
	}

	tp, _ := pw.r.GetName(node["Type"])
	if tp == "Page" || tp != "Pages" && node["Kids"] == nil {
		return pw.leaf(node, inherited, yield)
	}

	next := pdf.Dict{}
	for key, val := range inherited {
		next[key] = val
	}
	for _, key := range inheritable {
		if val, ok := node[key]; ok {
			next[key] = val
		}
	}
	kids, err := pw.r.GetArray(node["Kids"])
	if err != nil {
		return err
	}
	for _, kid := range kids {
		err := pw.walk(kid, next, yield)
		if err != nil {
			return err
		}
	}
	return nil
}

func (pw *pageWalker) leaf(node, inherited pdf.Dict, yield func(*Page)) error {
	dict := pdf.Dict{}
	for key, val := range inherited {
		dict[key] = val
	}
	for key, val := range node {
		dict[key] = val
	}
	for _, key := range dropped {
		delete(dict, key)
	}

	box, err := pw.readBox(dict["MediaBox"])
	if err != nil {
		return err
	}
	delete(dict, "MediaBox")

	contents, err := pw.readContents(dict["Contents"])
	if err != nil {
		return err
	}
	delete(dict, "Contents")

	yield(&Page{
		MediaBox: box,
		src:      pw.r,
		dict:     dict,
		contents: contents,
	})
	return nil
}

// readBox reads a rectangle.  If the MediaBox is missing, US Letter size is
// used.
func (pw *pageWalker) readBox(obj pdf.Object) (rect.Rect, error) {
	a, err := pw.r.GetArray(obj)
	if err != nil {
		return rect.Rect{}, err
	}
	if a == nil {
		return rect.Rect{LLx: 0, LLy: 0, URx: 612, URy: 792}, nil
	}
	if len(a) != 4 {
		return rect.Rect{}, &pdf.MalformedFileError{Err: fmt.Errorf("invalid rectangle %s", pdf.Format(a))}
	}
	var x [4]float64
	for i, obj := range a {
		x[i], err = pw.r.GetNumber(obj)
		if err != nil {
			return rect.Rect{}, err
		}
	}
	return rect.Rect{
		LLx: min(x[0], x[2]),
		LLy: min(x[1], x[3]),
		URx: max(x[0], x[2]),
		URy: max(x[1], x[3]),
	}, nil
}

// readContents returns the individual content streams of a page.
func (pw *pageWalker) readContents(obj pdf.Object) ([]segment, error) {
	resolved, err := pw.r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	var items pdf.Array
	switch x := resolved.(type) {
	case nil:
		return nil, nil
	case *pdf.Stream:
		items = pdf.Array{obj}
	case pdf.Array:
		items = x
	default:
		return nil, &pdf.MalformedFileError{Err: fmt.Errorf("invalid /Contents of type %T", resolved)}
	}

	var res []segment
	for _, item := range items {
		if item == nil {
			continue
		}
		res = append(res, segment{orig: item})
	}
	return res, nil
}
