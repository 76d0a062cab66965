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
	"errors"
	"fmt"
	"os"
)

// Reader represents a PDF file opened for reading.
// The whole file is held in memory, so that no file handles
// stay open after [Open] returns.
type Reader struct {
	// Version is the PDF version given in the file header.
	Version Version

	// Trailer holds the /Root, /Info, /ID and /Size entries
	// of the trailer dictionary.
	Trailer Dict

	data   []byte
	xref   map[int]*xRefEntry
	objStm map[int]*objStm

	// inProgress guards against reference loops while resolving
	// stream lengths.
	inProgress map[int]bool
}

// Open reads the PDF file with the given name.
func Open(fname string) (*Reader, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return NewReader(data)
}

// NewReader parses a PDF file held in memory.
// The reader keeps a reference to data.
func NewReader(data []byte) (*Reader, error) {
	r := &Reader{
		data:       data,
		objStm:     make(map[int]*objStm),
		inProgress: make(map[int]bool),
	}

	ver, err := r.readHeaderVersion()
	if err != nil {
		return nil, err
	}
	r.Version = ver

	xref, trailer, err := r.readXRef()
	if err != nil {
		return nil, err
	}
	r.xref = xref
	r.Trailer = trailer

	if trailer["Encrypt"] != nil {
		return nil, ErrEncrypted
	}
	if _, ok := trailer["Root"].(Reference); !ok {
		return nil, &MalformedFileError{Err: errors.New("missing /Root")}
	}
	return r, nil
}

func (r *Reader) readHeaderVersion() (Version, error) {
	idx := bytes.Index(r.data[:min(len(r.data), 1024)], []byte("%PDF-"))
	if idx < 0 {
		return 0, &MalformedFileError{Err: errors.New("PDF header not found")}
	}
	tail := r.data[idx+5:]
	if len(tail) < 3 {
		return 0, &MalformedFileError{Err: errVersion}
	}
	ver, err := ParseVersion(string(tail[:3]))
	if err != nil {
		return 0, &MalformedFileError{Pos: int64(idx), Err: err}
	}
	return ver, nil
}

// Catalog returns the document catalog.
func (r *Reader) Catalog() (Dict, error) {
	return r.GetDict(r.Trailer["Root"])
}

// Resolve resolves references to indirect objects.
// Chains of references are followed.  References to free or missing
// objects resolve to nil, as required by the PDF specification.
func (r *Reader) Resolve(obj Object) (Object, error) {
	seen := map[Reference]bool{}
	for {
		ref, ok := obj.(Reference)
		if !ok {
			return obj, nil
		}
		if seen[ref] {
			return nil, &MalformedFileError{Err: fmt.Errorf("reference loop at %s", ref)}
		}
		seen[ref] = true

		var err error
		obj, err = r.getIndirect(ref)
		if err != nil {
			return nil, err
		}
	}
}

func (r *Reader) getIndirect(ref Reference) (Object, error) {
	entry := r.xref[ref.Number]
	if entry.IsFree() {
		return nil, nil
	}
	if entry.InStream > 0 {
		return r.getFromObjectStream(ref.Number, entry)
	}
	if entry.Generation != ref.Generation {
		return nil, nil
	}
	if entry.Pos >= int64(len(r.data)) {
		return nil, &MalformedFileError{Pos: entry.Pos, Err: errors.New("object offset past end of file")}
	}

	s := newScanner(r.data, int(entry.Pos), r.getLength)
	got, obj, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	if got.Number != ref.Number {
		return nil, &MalformedFileError{
			Pos: entry.Pos,
			Err: fmt.Errorf("xref entry for %s points to %s", ref, got),
		}
	}
	return obj, nil
}

// getLength resolves the /Length of a stream.
func (r *Reader) getLength(obj Object) (Integer, error) {
	ref, ok := obj.(Reference)
	if !ok {
		x, ok := obj.(Integer)
		if !ok {
			return 0, errors.New("invalid stream length")
		}
		return x, nil
	}
	if r.inProgress[ref.Number] {
		return 0, errors.New("recursive stream length")
	}
	r.inProgress[ref.Number] = true
	defer delete(r.inProgress, ref.Number)
	return r.GetInt(ref)
}

type objStm struct {
	data   []byte
	first  int
	offset []int
	number []int
}

func (r *Reader) getFromObjectStream(number int, entry *xRefEntry) (Object, error) {
	stm, err := r.loadObjectStream(entry.InStream)
	if err != nil {
		return nil, err
	}
	idx := int(entry.Pos)
	if idx < 0 || idx >= len(stm.offset) || stm.number[idx] != number {
		// the index is only a hint, search the header as a fallback
		idx = -1
		for i, n := range stm.number {
			if n == number {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil
		}
	}
	start := stm.first + stm.offset[idx]
	if start >= len(stm.data) {
		return nil, &MalformedFileError{Err: fmt.Errorf("object %d outside object stream", number)}
	}
	s := newScanner(stm.data, start, nil)
	return s.ReadObject()
}

func (r *Reader) loadObjectStream(number int) (*objStm, error) {
	if stm, ok := r.objStm[number]; ok {
		return stm, nil
	}

	entry := r.xref[number]
	if entry.IsFree() || entry.InStream > 0 {
		return nil, &MalformedFileError{Err: fmt.Errorf("invalid object stream %d", number)}
	}
	obj, err := r.getIndirect(Reference{Number: number, Generation: entry.Generation})
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return nil, &MalformedFileError{Err: fmt.Errorf("object stream %d is not a stream", number)}
	}

	n, err := r.GetInt(stream.Dict["N"])
	if err != nil {
		return nil, err
	}
	first, err := r.GetInt(stream.Dict["First"])
	if err != nil {
		return nil, err
	}
	data, err := decodeStream(stream, r.Resolve)
	if err != nil {
		return nil, &MalformedFileError{Err: err}
	}
	if n < 0 || first < 0 || int(first) > len(data) {
		return nil, &MalformedFileError{Err: fmt.Errorf("malformed object stream %d", number)}
	}

	res := &objStm{data: data, first: int(first)}
	s := newScanner(data[:first], 0, nil)
	for i := 0; i < int(n); i++ {
		s.SkipWhiteSpace()
		num, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		s.SkipWhiteSpace()
		off, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		res.number = append(res.number, int(num))
		res.offset = append(res.offset, int(off))
	}

	r.objStm[number] = res
	return res, nil
}

// GetDict resolves obj and checks that the result is a dictionary.
// A nil object yields a nil dictionary and no error.
func (r *Reader) GetDict(obj Object) (Dict, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case Dict:
		return x, nil
	case *Stream:
		return x.Dict, nil
	}
	return nil, &MalformedFileError{Err: fmt.Errorf("expected Dict but got %T", obj)}
}

// GetArray resolves obj and checks that the result is an array.
func (r *Reader) GetArray(obj Object) (Array, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case Array:
		return x, nil
	}
	return nil, &MalformedFileError{Err: fmt.Errorf("expected Array but got %T", obj)}
}

// GetInt resolves obj and checks that the result is an integer.
func (r *Reader) GetInt(obj Object) (Integer, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return 0, err
	}
	x, ok := obj.(Integer)
	if !ok {
		return 0, &MalformedFileError{Err: fmt.Errorf("expected Integer but got %T", obj)}
	}
	return x, nil
}

// GetNumber resolves obj and returns its value as a float64.
// Both integers and reals are accepted.
func (r *Reader) GetNumber(obj Object) (float64, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return 0, err
	}
	switch x := obj.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	}
	return 0, &MalformedFileError{Err: fmt.Errorf("expected number but got %T", obj)}
}

// GetName resolves obj and checks that the result is a name.
func (r *Reader) GetName(obj Object) (Name, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return "", err
	}
	x, ok := obj.(Name)
	if !ok {
		return "", &MalformedFileError{Err: fmt.Errorf("expected Name but got %T", obj)}
	}
	return x, nil
}

// ReadStream resolves obj, checks that the result is a stream, and returns
// the decoded stream data.
func (r *Reader) ReadStream(obj Object) ([]byte, error) {
	obj, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*Stream)
	if !ok {
		return nil, &MalformedFileError{Err: fmt.Errorf("expected Stream but got %T", obj)}
	}
	data, err := decodeStream(stm, r.Resolve)
	if err != nil {
		return nil, &MalformedFileError{Err: err}
	}
	return data, nil
}
