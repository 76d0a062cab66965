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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"seehuhn.de/go/pdfpage/action"
	"seehuhn.de/go/pdfpage/document"
	"seehuhn.de/go/pdfpage/font"
	"seehuhn.de/go/pdfpage/interp"
)

// Observer is notified about actions and page operations.
type Observer interface {
	interp.Observer
	PageDone(operation string, d time.Duration, err error)
}

// DocumentStore opens source documents for [Assembler.LoadPage].
type DocumentStore interface {
	Open(path string) (*document.Document, error)
}

// Files is a DocumentStore which reads documents from the file system.
type Files struct{}

// Open reads the PDF file at path.
func (Files) Open(path string) (*document.Document, error) {
	return document.Open(path)
}

// Assembler creates and modifies document pages.
//
// An Assembler holds no mutable state and can be used concurrently,
// as long as every goroutine operates on its own document.
type Assembler struct {
	Fonts  interp.FontResolver
	Images interp.ImageLoader

	// Store is used to open files for LoadPage.  If this is nil,
	// files are read from the file system.
	Store DocumentStore

	Logger   *slog.Logger
	Observer Observer
}

// CreatePage creates a new page with the given media box and draws the
// actions onto the page.  The page is not added to any document.
func (a *Assembler) CreatePage(box MediaBox, actions []action.Action) (p *document.Page, err error) {
	defer a.done("create", time.Now(), &err)

	p = document.NewPage(box.Rect())
	err = a.draw(p, document.Replace, actions)
	if err != nil {
		return nil, err
	}
	a.logger().Info("page created",
		"width", box.Width, "height", box.Height, "actions", len(actions))
	return p, nil
}

// LoadPage returns a copy of the page with the given index.  If filePath is
// not empty, the page is taken from the document stored at filePath instead
// of doc.  The returned page can be added to any document.
func (a *Assembler) LoadPage(doc *document.Document, pageIndex int, filePath string) (p *document.Page, err error) {
	defer a.done("load", time.Now(), &err)

	src := doc
	if filePath != "" {
		store := a.Store
		if store == nil {
			store = Files{}
		}
		src, err = store.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("load page: %w", err)
		}
	}
	orig, err := src.Page(pageIndex)
	if err != nil {
		return nil, err
	}

	p = orig.Clone()
	err = a.draw(p, document.Append, nil)
	if err != nil {
		return nil, err
	}
	a.logger().Info("page loaded", "index", pageIndex, "file", filePath)
	return p, nil
}

// ModifyPage draws the actions on top of the existing content of the page
// with the given index.
func (a *Assembler) ModifyPage(doc *document.Document, pageIndex int, actions []action.Action) (p *document.Page, err error) {
	defer a.done("modify", time.Now(), &err)

	p, err = doc.Page(pageIndex)
	if err != nil {
		return nil, err
	}
	err = a.draw(p, document.Append, actions)
	if err != nil {
		return nil, err
	}
	a.logger().Info("page modified", "index", pageIndex, "actions", len(actions))
	return p, nil
}

// MeasureText returns the size of text, set in the given font and size.
func (a *Assembler) MeasureText(fontName, text string, size int) (font.TextSize, error) {
	if a.Fonts == nil {
		return font.TextSize{}, &font.NotFoundError{Name: fontName}
	}
	f, err := a.Fonts.Resolve(fontName)
	if err != nil {
		return font.TextSize{}, err
	}
	return f.Measure(text, float64(size)), nil
}

// draw runs the actions in a new content session for p.
// The session is always closed.  If drawing fails, the new content is
// discarded.
func (a *Assembler) draw(p *document.Page, mode document.Mode, actions []action.Action) error {
	s, err := p.OpenSession(mode)
	if err != nil {
		return err
	}

	in := &interp.Interpreter{
		Fonts:  a.Fonts,
		Images: a.Images,
		Logger: a.Logger,
	}
	if a.Observer != nil {
		in.Observer = a.Observer
	}
	err = in.Run(s.Writer(), p.Height(), actions)
	if err != nil {
		return errors.Join(err, s.Discard())
	}
	return s.Close()
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Assembler) done(operation string, start time.Time, err *error) {
	if *err != nil {
		a.logger().Debug("page operation failed", "operation", operation, "error", *err)
	}
	if a.Observer != nil {
		a.Observer.PageDone(operation, time.Since(start), *err)
	}
}
