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

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"

	"seehuhn.de/go/pdfpage"
	"seehuhn.de/go/pdfpage/document"
)

// A job is a list of page operations, applied to a document in order.
type job struct {
	steps []step
}

// A step holds exactly one of the three request types.
type step struct {
	create *pdfpage.CreateRequest
	load   *pdfpage.LoadRequest
	modify *pdfpage.ModifyRequest
}

func (s step) op() string {
	switch {
	case s.create != nil:
		return "create"
	case s.load != nil:
		return "load"
	default:
		return "modify"
	}
}

// parseJob decodes a job file.  Files with extension .json or .json5 are
// parsed as JSON5, everything else as YAML.
//
// A job file has the form
//
//	pages:
//	  - op: create
//	    mediaBox: {x: 0, y: 0, width: 595, height: 842}
//	    actions: [...]
//	  - op: load
//	    pageIndex: 0
//	    filePath: other.pdf
//	  - op: modify
//	    pageIndex: 0
//	    actions: [...]
func parseJob(data []byte, name string) (*job, error) {
	raw, err := parseRaw(data, name)
	if err != nil {
		return nil, err
	}

	pagesVal, ok := raw["pages"]
	if !ok {
		return nil, errors.New(`missing "pages"`)
	}
	pages, ok := pagesVal.([]any)
	if !ok {
		return nil, fmt.Errorf(`"pages" must be a list, not %T`, pagesVal)
	}

	res := &job{}
	for i, item := range pages {
		f, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("page %d: expected an object, got %T", i, item)
		}
		op, _ := f["op"].(string)
		var s step
		switch op {
		case "create":
			s.create, err = pdfpage.DecodeCreate(f)
		case "load":
			s.load, err = pdfpage.DecodeLoad(f)
		case "modify":
			s.modify, err = pdfpage.DecodeModify(f)
		default:
			err = fmt.Errorf("invalid op %q", op)
		}
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		res.steps = append(res.steps, s)
	}
	return res, nil
}

func parseRaw(data []byte, name string) (map[string]any, error) {
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".json5":
		err := json5.Unmarshal(data, &raw)
		if err != nil {
			return nil, err
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		err := dec.Decode(&raw)
		if err != nil && err != io.EOF {
			return nil, err
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// run applies the steps of the job to doc.  Created and loaded pages are
// appended to the document, modified pages are changed in place.
func (j *job) run(a *pdfpage.Assembler, doc *document.Document) error {
	for i, s := range j.steps {
		var p *document.Page
		var err error
		switch {
		case s.create != nil:
			p, err = a.CreatePage(s.create.MediaBox, s.create.Actions)
		case s.load != nil:
			p, err = a.LoadPage(doc, s.load.PageIndex, s.load.FilePath)
		default:
			_, err = a.ModifyPage(doc, s.modify.PageIndex, s.modify.Actions)
		}
		if err != nil {
			return fmt.Errorf("page %d (%s): %w", i, s.op(), err)
		}
		if p != nil {
			doc.AddPage(p)
		}
	}
	return nil
}
