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
)

type xRefEntry struct {
	// InStream is the number of the object stream which holds the object,
	// or 0 if the object is stored directly in the file.
	InStream int

	// Pos is the byte offset of the object in the file, or the index
	// inside the object stream.  Free objects have Pos < 0.
	Pos        int64
	Generation uint16
}

func (entry *xRefEntry) IsFree() bool {
	return entry == nil || entry.Pos < 0
}

func (r *Reader) findXRef() (int64, error) {
	idx := bytes.LastIndex(r.data, []byte("startxref"))
	if idx < 0 {
		return 0, &MalformedFileError{Err: errors.New("startxref not found")}
	}
	s := newScanner(r.data, idx+9, nil)
	s.SkipWhiteSpace()
	xRefPos, err := s.ReadInteger()
	if err != nil {
		return 0, err
	}
	if xRefPos <= 0 || int64(xRefPos) >= int64(len(r.data)) {
		return 0, &MalformedFileError{
			Pos: int64(s.pos),
			Err: errors.New("invalid xref position"),
		}
	}
	return int64(xRefPos), nil
}

// readXRef reads all cross-reference sections, following the /Prev chain.
// Entries from newer sections take precedence over older ones.
func (r *Reader) readXRef() (map[int]*xRefEntry, Dict, error) {
	start, err := r.findXRef()
	if err != nil {
		return nil, nil, err
	}

	xref := make(map[int]*xRefEntry)
	trailer := Dict{}
	first := true
	seen := make(map[int64]bool)
	for {
		// avoid xref loops
		if seen[start] {
			break
		}
		seen[start] = true

		s := newScanner(r.data, int(start), nil)
		s.SkipWhiteSpace()

		var dict Dict
		if bytes.HasPrefix(r.data[s.pos:], []byte("xref")) {
			dict, err = readXRefTable(xref, s)
			if err != nil {
				return nil, nil, err
			}
			if zStart, ok := dict["XRefStm"].(Integer); ok {
				s = newScanner(r.data, int(zStart), nil)
				_, err = readXRefStream(xref, s)
				if err != nil {
					return nil, nil, err
				}
			}
		} else {
			dict, err = readXRefStream(xref, s)
			if err != nil {
				return nil, nil, err
			}
		}

		if first {
			for _, key := range []Name{"Root", "Encrypt", "Info", "ID", "Size"} {
				if val, ok := dict[key]; ok {
					trailer[key] = val
				}
			}
			first = false
		}

		prev := dict["Prev"]
		if prev == nil {
			break
		}
		prevStart, ok := prev.(Integer)
		if !ok || prevStart <= 0 || int64(prevStart) >= int64(len(r.data)) {
			return nil, nil, &MalformedFileError{
				Pos: start,
				Err: fmt.Errorf("invalid /Prev value %s", Format(prev)),
			}
		}
		start = int64(prevStart)
	}

	return xref, trailer, nil
}

func readXRefTable(xref map[int]*xRefEntry, s *scanner) (Dict, error) {
	err := s.SkipString("xref")
	if err != nil {
		return nil, err
	}
	s.SkipWhiteSpace()

	for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		start, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		s.SkipWhiteSpace()
		length, err := s.ReadInteger()
		if err != nil {
			return nil, err
		}
		s.SkipWhiteSpace()

		for i := int(start); i < int(start+length); i++ {
			pos, err := s.ReadInteger()
			if err != nil {
				return nil, err
			}
			s.SkipWhiteSpace()
			gen, err := s.ReadInteger()
			if err != nil {
				return nil, err
			}
			s.SkipWhiteSpace()
			if s.pos >= len(s.data) {
				return nil, s.errorf("truncated xref table")
			}
			tp := s.data[s.pos]
			s.pos++
			s.SkipWhiteSpace()

			if xref[i] != nil {
				continue
			}
			switch tp {
			case 'n':
				xref[i] = &xRefEntry{Pos: int64(pos), Generation: uint16(gen)}
			case 'f':
				xref[i] = &xRefEntry{Pos: -1, Generation: uint16(gen)}
			default:
				return nil, s.errorf("invalid xref entry type %q", tp)
			}
		}
	}

	s.SkipWhiteSpace()
	err = s.SkipString("trailer")
	if err != nil {
		return nil, err
	}
	s.SkipWhiteSpace()
	obj, err := s.ReadObject()
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(Dict)
	if !ok {
		return nil, s.errorf("trailer is not a dictionary")
	}
	return dict, nil
}

func readXRefStream(xref map[int]*xRefEntry, s *scanner) (Dict, error) {
	_, obj, err := s.ReadIndirectObject()
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*Stream)
	if !ok {
		return nil, s.errorf("xref stream is not a stream")
	}
	if tp, _ := stm.Dict["Type"].(Name); tp != "XRef" {
		return nil, s.errorf("wrong /Type for xref stream")
	}

	w, ss, err := checkXRefStreamDict(stm.Dict)
	if err != nil {
		return nil, &MalformedFileError{Pos: int64(s.pos), Err: err}
	}

	data, err := decodeStream(stm, func(o Object) (Object, error) { return o, nil })
	if err != nil {
		return nil, &MalformedFileError{Pos: int64(s.pos), Err: err}
	}

	err = decodeXRefStream(xref, data, w, ss)
	if err != nil {
		return nil, err
	}
	return stm.Dict, nil
}

type xRefSubSection struct {
	Start, Size int
}

func checkXRefStreamDict(dict Dict) ([]int, []xRefSubSection, error) {
	size, ok := dict["Size"].(Integer)
	if !ok || size < 0 {
		return nil, nil, errors.New("missing or invalid /Size in xref stream")
	}

	wObj, _ := dict["W"].(Array)
	if len(wObj) != 3 {
		return nil, nil, errors.New("invalid /W in xref stream")
	}
	w := make([]int, 3)
	for i, x := range wObj {
		xi, ok := x.(Integer)
		if !ok || xi < 0 || xi > 8 {
			return nil, nil, errors.New("invalid /W in xref stream")
		}
		w[i] = int(xi)
	}

	var ss []xRefSubSection
	if index, ok := dict["Index"].(Array); ok {
		if len(index)%2 != 0 {
			return nil, nil, errors.New("invalid /Index in xref stream")
		}
		for i := 0; i < len(index); i += 2 {
			start, ok1 := index[i].(Integer)
			n, ok2 := index[i+1].(Integer)
			if !ok1 || !ok2 || start < 0 || n < 0 {
				return nil, nil, errors.New("invalid /Index in xref stream")
			}
			ss = append(ss, xRefSubSection{int(start), int(n)})
		}
	} else {
		ss = []xRefSubSection{{0, int(size)}}
	}
	return w, ss, nil
}

func decodeXRefStream(xref map[int]*xRefEntry, data []byte, w []int, ss []xRefSubSection) error {
	entryLen := w[0] + w[1] + w[2]
	for _, sec := range ss {
		for i := sec.Start; i < sec.Start+sec.Size; i++ {
			if len(data) < entryLen {
				return &MalformedFileError{Err: errors.New("xref stream too short")}
			}
			buf := data[:entryLen]
			data = data[entryLen:]

			tp := int64(1)
			if w[0] > 0 {
				tp = decodeInt(buf[:w[0]])
			}
			a := decodeInt(buf[w[0] : w[0]+w[1]])
			b := decodeInt(buf[w[0]+w[1]:])

			if xref[i] != nil {
				continue
			}
			switch tp {
			case 0:
				xref[i] = &xRefEntry{Pos: -1, Generation: uint16(b)}
			case 1:
				xref[i] = &xRefEntry{Pos: a, Generation: uint16(b)}
			case 2:
				xref[i] = &xRefEntry{InStream: int(a), Pos: b}
			}
		}
	}
	return nil
}

func decodeInt(buf []byte) (res int64) {
	for _, x := range buf {
		res = res<<8 | int64(x)
	}
	return res
}
