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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"seehuhn.de/go/pdfpage/graphics"
	"seehuhn.de/go/pdfpage/pdf"
)

// WriteOptions controls how a document is written.
type WriteOptions struct {
	// Compress enables the FlateDecode filter for new content streams.
	Compress bool

	// Producer, if set, is stored in the document information dictionary.
	Producer string

	// Version is the PDF version of the output file.
	// If this is zero, PDF 1.7 is used.
	Version pdf.Version
}

// Save writes the document to the named file.
func (d *Document) Save(fname string, opt *WriteOptions) (err error) {
	fd, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, fd.Close())
	}()

	bw := bufio.NewWriter(fd)
	err = d.Write(bw, opt)
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Write writes the document in PDF format.
func (d *Document) Write(out io.Writer, opt *WriteOptions) error {
	if opt == nil {
		opt = &WriteOptions{Compress: true}
	}
	version := opt.Version
	if version == 0 {
		version = pdf.V1_7
	}

	w, err := pdf.NewWriter(out, version)
	if err != nil {
		return err
	}

	dw := &docWriter{
		w:        w,
		opt:      opt,
		copiers:  make(map[*pdf.Reader]*pdf.Copier),
		embedded: make(map[graphics.Resource]pdf.Reference),
	}

	pagesRef := w.Alloc()
	var kids pdf.Array
	for i, p := range d.pages {
		ref, err := dw.writePage(p, pagesRef)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		kids = append(kids, ref)
	}
	err = w.Put(pagesRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Integer(len(kids)),
	})
	if err != nil {
		return err
	}

	catalogRef := w.Alloc()
	err = w.Put(catalogRef, pdf.Dict{
		"Type":  pdf.Name("Catalog"),
		"Pages": pagesRef,
	})
	if err != nil {
		return err
	}

	trailer := pdf.Dict{
		"Root": catalogRef,
		"ID":   d.fileID(),
	}
	info := pdf.Dict{"ModDate": pdf.Date(time.Now())}
	if opt.Producer != "" {
		info["Producer"] = pdf.String(opt.Producer)
	}
	infoRef := w.Alloc()
	err = w.Put(infoRef, info)
	if err != nil {
		return err
	}
	trailer["Info"] = infoRef

	return w.Close(trailer)
}

// fileID returns the file identifier for the trailer.  The first element
// of the identifier of the source file is kept.
func (d *Document) fileID() pdf.Array {
	u := uuid.New()
	current := pdf.String(u[:])
	first := current
	if d.src != nil {
		if id, ok := d.src.Trailer["ID"].(pdf.Array); ok && len(id) == 2 {
			if s, ok := id[0].(pdf.String); ok {
				first = s
			}
		}
	}
	return pdf.Array{first, current}
}

type docWriter struct {
	w        *pdf.Writer
	opt      *WriteOptions
	copiers  map[*pdf.Reader]*pdf.Copier
	embedded map[graphics.Resource]pdf.Reference
}

func (dw *docWriter) copier(r *pdf.Reader) *pdf.Copier {
	c, ok := dw.copiers[r]
	if !ok {
		c = pdf.NewCopier(dw.w, r)
		dw.copiers[r] = c
	}
	return c
}

func (dw *docWriter) embed(res graphics.Resource) (pdf.Reference, error) {
	if ref, ok := dw.embedded[res]; ok {
		return ref, nil
	}
	ref, err := res.Embed(dw.w)
	if err != nil {
		return pdf.Reference{}, err
	}
	dw.embedded[res] = ref
	return ref, nil
}

func (dw *docWriter) writePage(p *Page, parent pdf.Reference) (pdf.Reference, error) {
	var c *pdf.Copier
	if p.src != nil {
		c = dw.copier(p.src)
	}

	pageDict := pdf.Dict{}
	for key, val := range p.dict {
		if key == "Resources" {
			continue
		}
		repl, err := c.Copy(val)
		if err != nil {
			return pdf.Reference{}, err
		}
		pageDict[key] = repl
	}
	pageDict["Type"] = pdf.Name("Page")
	pageDict["Parent"] = parent
	pageDict["MediaBox"] = pdf.Array{
		pdf.Real(p.MediaBox.LLx), pdf.Real(p.MediaBox.LLy),
		pdf.Real(p.MediaBox.URx), pdf.Real(p.MediaBox.URy),
	}

	resources, err := dw.writeResources(p, c)
	if err != nil {
		return pdf.Reference{}, err
	}
	pageDict["Resources"] = resources

	var contents pdf.Array
	for _, seg := range p.contents {
		if seg.orig != nil {
			ref, err := c.Copy(seg.orig)
			if err != nil {
				return pdf.Reference{}, err
			}
			contents = append(contents, ref)
			continue
		}
		stm, err := pdf.NewStream(nil, seg.data, dw.opt.Compress)
		if err != nil {
			return pdf.Reference{}, err
		}
		ref := dw.w.Alloc()
		err = dw.w.Put(ref, stm)
		if err != nil {
			return pdf.Reference{}, err
		}
		contents = append(contents, ref)
	}
	switch len(contents) {
	case 0:
		// no content
	case 1:
		pageDict["Contents"] = contents[0]
	default:
		pageDict["Contents"] = contents
	}

	ref := dw.w.Alloc()
	err = dw.w.Put(ref, pageDict)
	if err != nil {
		return pdf.Reference{}, err
	}
	return ref, nil
}

// writeResources combines the resource dictionary from the source file with
// the resources added by content sessions.
func (dw *docWriter) writeResources(p *Page, c *pdf.Copier) (pdf.Dict, error) {
	var orig pdf.Dict
	if p.src != nil {
		var err error
		orig, err = p.src.GetDict(p.dict["Resources"])
		if err != nil {
			return nil, err
		}
	}

	res := pdf.Dict{}
	for key, val := range orig {
		cat := graphics.Category(key)
		if len(p.res[cat]) > 0 {
			// merged below
			continue
		}
		repl, err := c.Copy(val)
		if err != nil {
			return nil, err
		}
		res[key] = repl
	}

	for cat, m := range p.res {
		if len(m) == 0 {
			continue
		}
		sub := pdf.Dict{}
		if orig != nil {
			origSub, err := p.src.GetDict(orig[pdf.Name(cat)])
			if err != nil {
				return nil, err
			}
			for name, val := range origSub {
				repl, err := c.Copy(val)
				if err != nil {
					return nil, err
				}
				sub[name] = repl
			}
		}
		for name, r := range m {
			ref, err := dw.embed(r)
			if err != nil {
				return nil, fmt.Errorf("resource /%s: %w", name, err)
			}
			sub[name] = ref
		}
		res[pdf.Name(cat)] = sub
	}
	return res, nil
}
