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
	"io"
	"strconv"
)

// scanner tokenizes PDF objects from an in-memory byte slice.
type scanner struct {
	data []byte
	pos  int

	// base is added to pos when reporting errors, so that positions inside
	// decoded object streams can be told apart from file positions.
	base int64

	// getInt resolves indirect /Length values of streams.
	// If getInt is nil, only direct lengths are used.
	getInt func(Object) (Integer, error)
}

func newScanner(data []byte, pos int, getInt func(Object) (Integer, error)) *scanner {
	return &scanner{
		data:   data,
		pos:    pos,
		getInt: getInt,
	}
}

func (s *scanner) errorf(format string, args ...any) error {
	return &MalformedFileError{
		Pos: s.base + int64(s.pos),
		Err: fmt.Errorf(format, args...),
	}
}

// ReadIndirectObject reads an object of the form "n g obj ... endobj".
func (s *scanner) ReadIndirectObject() (Reference, Object, error) {
	// Some files point the xref entries at the end of the previous line.
	s.SkipWhiteSpace()

	number, err := s.ReadInteger()
	if err != nil {
		return Reference{}, nil, err
	}
	s.SkipWhiteSpace()
	generation, err := s.ReadInteger()
	if err != nil {
		return Reference{}, nil, err
	}
	s.SkipWhiteSpace()
	err = s.SkipString("obj")
	if err != nil {
		return Reference{}, nil, err
	}
	s.SkipWhiteSpace()

	obj, err := s.ReadObject()
	if err != nil {
		return Reference{}, nil, err
	}
	if dict, ok := obj.(Dict); ok {
		s.SkipWhiteSpace()
		if bytes.HasPrefix(s.data[s.pos:], []byte("stream")) {
			obj, err = s.ReadStreamData(dict)
			if err != nil {
				return Reference{}, nil, err
			}
		}
	}

	// A missing "endobj" is tolerated.
	ref := Reference{Number: int(number), Generation: uint16(generation)}
	return ref, obj, nil
}

// ReadObject reads one direct object.  Integers followed by a generation
// number and "R" are combined into a Reference.
func (s *scanner) ReadObject() (Object, error) {
	s.SkipWhiteSpace()
	buf := s.data[s.pos:]

	switch {
	case len(buf) == 0:
		return nil, &MalformedFileError{Pos: s.base + int64(s.pos), Err: io.ErrUnexpectedEOF}
	case bytes.HasPrefix(buf, []byte("null")):
		s.pos += 4
		return nil, nil
	case bytes.HasPrefix(buf, []byte("true")):
		s.pos += 4
		return Bool(true), nil
	case bytes.HasPrefix(buf, []byte("false")):
		s.pos += 5
		return Bool(false), nil
	case buf[0] == '/':
		s.pos++
		return s.ReadName()
	case buf[0] >= '0' && buf[0] <= '9', buf[0] == '+', buf[0] == '-', buf[0] == '.':
		obj, err := s.ReadNumber()
		if err != nil {
			return nil, err
		}
		if a, ok := obj.(Integer); ok && a >= 0 {
			if ref, ok := s.tryReference(a); ok {
				return ref, nil
			}
		}
		return obj, nil
	case bytes.HasPrefix(buf, []byte("<<")):
		s.pos += 2
		return s.ReadDict()
	case buf[0] == '(':
		s.pos++
		return s.ReadQuotedString()
	case buf[0] == '<':
		s.pos++
		return s.ReadHexString()
	case buf[0] == '[':
		s.pos++
		return s.ReadArray()
	}
	return nil, s.errorf("unexpected character %q", buf[0])
}

// tryReference checks whether the integer a just read is followed by
// "g R".  If not, the scanner position is left unchanged.
func (s *scanner) tryReference(a Integer) (Reference, bool) {
	save := s.pos
	s.SkipWhiteSpace()
	if s.pos == save || s.pos >= len(s.data) || !isDigit(s.data[s.pos]) {
		s.pos = save
		return Reference{}, false
	}
	start := s.pos
	for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		s.pos++
	}
	gen, err := strconv.ParseUint(string(s.data[start:s.pos]), 10, 16)
	if err != nil {
		s.pos = save
		return Reference{}, false
	}
	s.SkipWhiteSpace()
	if s.pos >= len(s.data) || s.data[s.pos] != 'R' ||
		s.pos+1 < len(s.data) && !isSpace[s.data[s.pos+1]] && !isDelimiter[s.data[s.pos+1]] {
		s.pos = save
		return Reference{}, false
	}
	s.pos++
	return Reference{Number: int(a), Generation: uint16(gen)}, true
}

// ReadInteger reads an integer.
func (s *scanner) ReadInteger() (Integer, error) {
	start := s.pos
	if s.pos < len(s.data) && (s.data[s.pos] == '+' || s.data[s.pos] == '-') {
		s.pos++
	}
	for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		s.pos++
	}
	x, err := strconv.ParseInt(string(s.data[start:s.pos]), 10, 64)
	if err != nil {
		s.pos = start
		return 0, &MalformedFileError{Pos: s.base + int64(start), Err: err}
	}
	return Integer(x), nil
}

// ReadNumber reads an integer or real number.
func (s *scanner) ReadNumber() (Object, error) {
	start := s.pos
	hasDot := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '.' && !hasDot {
			hasDot = true
		} else if (c == '+' || c == '-') && s.pos == start {
			// sign
		} else if !isDigit(c) {
			break
		}
		s.pos++
	}
	text := string(s.data[start:s.pos])

	if hasDot {
		x, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &MalformedFileError{Pos: s.base + int64(start), Err: err}
		}
		return Real(x), nil
	}
	x, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &MalformedFileError{Pos: s.base + int64(start), Err: err}
	}
	return Integer(x), nil
}

// ReadQuotedString reads a ()-delimited string, starting after the opening
// bracket.
func (s *scanner) ReadQuotedString() (String, error) {
	var res []byte
	level := 0
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			level++
			res = append(res, c)
		case ')':
			if level == 0 {
				return String(res), nil
			}
			level--
			res = append(res, c)
		case '\\':
			if s.pos >= len(s.data) {
				break
			}
			c = s.data[s.pos]
			s.pos++
			switch c {
			case 'n':
				res = append(res, '\n')
			case 'r':
				res = append(res, '\r')
			case 't':
				res = append(res, '\t')
			case 'b':
				res = append(res, '\b')
			case 'f':
				res = append(res, '\f')
			case '\r':
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
				// line continuation
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := c - '0'
				for k := 0; k < 2 && s.pos < len(s.data); k++ {
					d := s.data[s.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val<<3 | (d - '0')
					s.pos++
				}
				res = append(res, val)
			default:
				res = append(res, c)
			}
		case '\r':
			// end-of-line markers inside strings are read as "\n"
			if s.pos < len(s.data) && s.data[s.pos] == '\n' {
				s.pos++
			}
			res = append(res, '\n')
		default:
			res = append(res, c)
		}
	}
	return nil, s.errorf("unterminated string")
}

// ReadHexString reads a hex string, starting after the opening "<".
func (s *scanner) ReadHexString() (String, error) {
	var res []byte
	first := true
	var hi byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			if !first {
				res = append(res, hi<<4)
			}
			return String(res), nil
		}
		if isSpace[c] {
			continue
		}
		d, ok := hexDigit(c)
		if !ok {
			return nil, s.errorf("invalid hex digit %q", c)
		}
		if first {
			hi = d
		} else {
			res = append(res, hi<<4|d)
		}
		first = !first
	}
	return nil, s.errorf("unterminated hex string")
}

// ReadName reads a PDF name, starting after the "/".
func (s *scanner) ReadName() (Name, error) {
	var res []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isSpace[c] || isDelimiter[c] {
			break
		}
		s.pos++
		if c == '#' && s.pos+1 < len(s.data) {
			hi, ok1 := hexDigit(s.data[s.pos])
			lo, ok2 := hexDigit(s.data[s.pos+1])
			if ok1 && ok2 {
				res = append(res, hi<<4|lo)
				s.pos += 2
				continue
			}
		}
		res = append(res, c)
	}
	return Name(res), nil
}

// ReadArray reads an array, starting after the opening "[".
func (s *scanner) ReadArray() (Array, error) {
	res := Array{}
	for {
		s.SkipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, s.errorf("unterminated array")
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return res, nil
		}
		obj, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		res = append(res, obj)
	}
}

// ReadDict reads a dictionary, starting after the opening "<<".
func (s *scanner) ReadDict() (Dict, error) {
	res := Dict{}
	for {
		s.SkipWhiteSpace()
		if s.pos >= len(s.data) {
			return nil, s.errorf("unterminated dictionary")
		}
		if bytes.HasPrefix(s.data[s.pos:], []byte(">>")) {
			s.pos += 2
			return res, nil
		}
		if s.data[s.pos] != '/' {
			return nil, s.errorf("dictionary key is not a name")
		}
		s.pos++
		key, err := s.ReadName()
		if err != nil {
			return nil, err
		}
		val, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		if val != nil {
			res[key] = val
		}
	}
}

// ReadStreamData reads the data of a stream, starting at the "stream"
// keyword.  If the /Length entry is missing or wrong, the data extends to
// the next "endstream".
func (s *scanner) ReadStreamData(dict Dict) (*Stream, error) {
	err := s.SkipString("stream")
	if err != nil {
		return nil, err
	}
	if s.pos < len(s.data) && s.data[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < len(s.data) && s.data[s.pos] == '\n' {
		s.pos++
	}
	start := s.pos

	length := -1
	switch l := dict["Length"].(type) {
	case Integer:
		length = int(l)
	case Reference:
		if s.getInt != nil {
			if x, err := s.getInt(l); err == nil {
				length = int(x)
			}
		}
	}

	end := -1
	if length >= 0 && start+length <= len(s.data) {
		tail := s.data[start+length:]
		k := 0
		for k < len(tail) && isSpace[tail[k]] {
			k++
		}
		if bytes.HasPrefix(tail[k:], []byte("endstream")) {
			end = start + length
		}
	}
	if end < 0 {
		idx := bytes.Index(s.data[start:], []byte("endstream"))
		if idx < 0 {
			return nil, s.errorf("missing endstream")
		}
		end = start + idx
		// the EOL before "endstream" is not part of the data
		if end > start && s.data[end-1] == '\n' {
			end--
		}
		if end > start && s.data[end-1] == '\r' {
			end--
		}
		dict["Length"] = Integer(end - start)
	}

	s.pos = end
	s.SkipWhiteSpace()
	_ = s.SkipString("endstream")

	data := s.data[start:end]
	return &Stream{Dict: dict, R: bytes.NewReader(data)}, nil
}

// SkipWhiteSpace skips white space and comments.
func (s *scanner) SkipWhiteSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		if !isSpace[c] {
			return
		}
		s.pos++
	}
}

// SkipString skips the literal string pat.
func (s *scanner) SkipString(pat string) error {
	if !bytes.HasPrefix(s.data[s.pos:], []byte(pat)) {
		return &MalformedFileError{
			Pos: s.base + int64(s.pos),
			Err: errors.New("expected " + strconv.Quote(pat)),
		}
	}
	s.pos += len(pat)
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
