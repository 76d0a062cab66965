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
	"io"
)

// Copier transfers objects from a [Reader] to a [Writer].
// Each indirect object is written at most once, and references are
// renumbered to match the output file.
type Copier struct {
	r   *Reader
	w   *Writer
	ref map[Reference]Reference
}

// NewCopier returns a Copier which reads from r and writes to w.
func NewCopier(w *Writer, r *Reader) *Copier {
	return &Copier{r: r, w: w, ref: make(map[Reference]Reference)}
}

// Copy returns a version of obj which is valid in the output file.
// Indirect objects reachable from obj are written to the output file
// as needed.  Stream data is copied without decoding.
func (c *Copier) Copy(obj Object) (Object, error) {
	switch x := obj.(type) {
	case Reference:
		return c.reference(x)
	case Array:
		res := make(Array, len(x))
		for i, elem := range x {
			out, err := c.Copy(elem)
			if err != nil {
				return nil, err
			}
			res[i] = out
		}
		return res, nil
	case Dict:
		return c.dict(x)
	case *Stream:
		dict, err := c.dict(x.Dict)
		if err != nil {
			return nil, err
		}
		var data []byte
		if x.R != nil {
			data, err = io.ReadAll(x.R)
			if err != nil {
				return nil, err
			}
		}
		dict["Length"] = Integer(len(data))
		return &Stream{Dict: dict, R: bytes.NewReader(data)}, nil
	}
	return obj, nil
}

func (c *Copier) dict(x Dict) (Dict, error) {
	res := make(Dict, len(x))
	for key, val := range x {
		out, err := c.Copy(val)
		if err != nil {
			return nil, err
		}
		res[key] = out
	}
	return res, nil
}

// reference writes the object ref points to, and returns the reference
// to the copy.  Chains of references are collapsed.
func (c *Copier) reference(ref Reference) (Reference, error) {
	if out, ok := c.ref[ref]; ok {
		return out, nil
	}
	obj, err := c.r.Resolve(ref)
	if err != nil {
		return Reference{}, err
	}

	// register before recursing, so that reference loops terminate
	out := c.w.Alloc()
	c.ref[ref] = out

	repl, err := c.Copy(obj)
	if err != nil {
		return Reference{}, err
	}
	return out, c.w.Put(out, repl)
}
