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

package document

import (
	"bytes"
	"errors"
	"maps"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpage/graphics"
	"seehuhn.de/go/pdfpage/pdf"
)

// Page is a single page of a document.
type Page struct {
	// MediaBox gives the boundaries of the physical medium.
	MediaBox rect.Rect

	// src is the file the page was read from, or nil for new pages.
	src *pdf.Reader

	// dict holds the remaining entries of the page dictionary from src,
	// including inherited attributes.  The Resources entry, if any, is
	// merged with the resources in res when the page is written.
	dict pdf.Dict

	contents []segment
	res      map[graphics.Category]map[pdf.Name]graphics.Resource

	sessionOpen bool
}

// segment is one content stream of a page.  Either orig refers to a stream
// in the source file, or data holds new, unencoded content.
type segment struct {
	orig pdf.Object
	data []byte
}

// NewPage returns an empty page with the given media box.
func NewPage(box rect.Rect) *Page {
	return &Page{MediaBox: box}
}

// Width returns the width of the media box.
func (p *Page) Width() float64 {
	return p.MediaBox.URx - p.MediaBox.LLx
}

// Height returns the height of the media box.
func (p *Page) Height() float64 {
	return p.MediaBox.URy - p.MediaBox.LLy
}

// Clone returns a copy of the page.  New content added to the copy does not
// affect the original.
func (p *Page) Clone() *Page {
	res := &Page{
		MediaBox: p.MediaBox,
		src:      p.src,
		dict:     maps.Clone(p.dict),
		contents: append([]segment(nil), p.contents...),
	}
	if p.res != nil {
		res.res = make(map[graphics.Category]map[pdf.Name]graphics.Resource, len(p.res))
		for cat, m := range p.res {
			res.res[cat] = maps.Clone(m)
		}
	}
	return res
}

// Contents returns the decoded content streams of the page, separated by
// newlines.
func (p *Page) Contents() ([]byte, error) {
	var parts [][]byte
	for _, seg := range p.contents {
		if seg.orig == nil {
			parts = append(parts, seg.data)
			continue
		}
		data, err := p.src.ReadStream(seg.orig)
		if err != nil {
			return nil, err
		}
		parts = append(parts, data)
	}
	return bytes.Join(parts, []byte("\n")), nil
}

// NumContentStreams returns the number of content streams of the page.
func (p *Page) NumContentStreams() int {
	return len(p.contents)
}

// resourceUsed reports whether a resource name is taken, either in the
// resource dictionary of the source file or by a resource added earlier.
func (p *Page) resourceUsed(cat graphics.Category, name pdf.Name) bool {
	if _, ok := p.res[cat][name]; ok {
		return true
	}
	if p.src == nil {
		return false
	}
	resDict, err := p.src.GetDict(p.dict["Resources"])
	if err != nil || resDict == nil {
		return false
	}
	sub, err := p.src.GetDict(resDict[pdf.Name(cat)])
	if err != nil || sub == nil {
		return false
	}
	_, ok := sub[name]
	return ok
}

// Mode selects how a [Session] combines new content with the existing
// content of a page.
type Mode int

const (
	// Replace discards the existing content of the page.
	Replace Mode = iota

	// Append adds the new content after the existing content.  If the page
	// already has content, the existing content is enclosed in a
	// q/Q pair, so that new content starts in the default graphics state.
	Append
)

func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case Append:
		return "append"
	default:
		return "invalid mode"
	}
}

// Session collects new content for a page.
// The content is attached to the page when the session is closed.
// Each session must be closed exactly once.
type Session struct {
	page *Page
	mode Mode
	buf  *bytes.Buffer
	w    *graphics.Writer

	closed bool
}

// OpenSession starts adding content to the page.
// Only one session can be open for a page at any time.
func (p *Page) OpenSession(mode Mode) (*Session, error) {
	if p.sessionOpen {
		return nil, ErrSessionOpen
	}
	if mode != Replace && mode != Append {
		return nil, errors.New("invalid session mode")
	}
	p.sessionOpen = true

	buf := &bytes.Buffer{}
	return &Session{
		page: p,
		mode: mode,
		buf:  buf,
		w:    graphics.NewWriter(buf, p.resourceUsed),
	}, nil
}

// Writer returns the content stream writer of the session.
func (s *Session) Writer() *graphics.Writer {
	return s.w
}

// Discard ends the session without changing the page.
func (s *Session) Discard() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.page.sessionOpen = false
	return nil
}

// Close finishes the session and attaches the new content to the page.
// If an error occurred while writing the content stream, the page is
// left unchanged.
func (s *Session) Close() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	p := s.page
	p.sessionOpen = false

	err := s.w.Close()
	if err != nil {
		return err
	}

	if s.mode == Replace {
		p.contents = nil
	}
	if s.buf.Len() == 0 {
		return nil
	}

	if len(p.contents) > 0 {
		wrapped := make([]segment, 0, len(p.contents)+2)
		wrapped = append(wrapped, segment{data: []byte("q\n")})
		wrapped = append(wrapped, p.contents...)
		wrapped = append(wrapped, segment{data: []byte("Q\n")})
		p.contents = wrapped
	}
	p.contents = append(p.contents, segment{data: s.buf.Bytes()})

	if p.res == nil {
		p.res = make(map[graphics.Category]map[pdf.Name]graphics.Resource)
	}
	add := func(cat graphics.Category, m map[pdf.Name]graphics.Resource) {
		if len(m) == 0 {
			return
		}
		if p.res[cat] == nil {
			p.res[cat] = make(map[pdf.Name]graphics.Resource)
		}
		maps.Copy(p.res[cat], m)
	}
	add(graphics.CatFont, s.w.Resources.Font)
	add(graphics.CatXObject, s.w.Resources.XObject)
	return nil
}
