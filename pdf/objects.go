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
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"
)

// Object is one of the PDF object types Array, Bool, Dict, Integer, Name,
// Real, Reference, *Stream and String.  A nil Object is the PDF null object.
type Object interface {
	// PDF writes the object in PDF syntax to w.
	PDF(w io.Writer) error
}

// Bool is a PDF boolean.
type Bool bool

// Integer is a PDF integer.
type Integer int64

// Real is a PDF real number.
type Real float64

// String is a PDF string.  Interpretation of the bytes depends on where the
// string is used.
type String []byte

// Name is a PDF name, stored without the leading slash.
type Name string

// Array is a PDF array.
type Array []Object

// Dict is a PDF dictionary.  Entries with a nil value are treated as absent.
type Dict map[Name]Object

// Stream is a PDF stream.  R yields the encoded stream data and can only
// be read once.
type Stream struct {
	Dict
	R io.Reader
}

// Reference points to an indirect object.
type Reference struct {
	Number     int
	Generation uint16
}

func (x Bool) PDF(w io.Writer) error      { return writeObject(w, x) }
func (x Integer) PDF(w io.Writer) error   { return writeObject(w, x) }
func (x Real) PDF(w io.Writer) error      { return writeObject(w, x) }
func (x String) PDF(w io.Writer) error    { return writeObject(w, x) }
func (x Name) PDF(w io.Writer) error      { return writeObject(w, x) }
func (x Array) PDF(w io.Writer) error     { return writeObject(w, x) }
func (x Dict) PDF(w io.Writer) error      { return writeObject(w, x) }
func (x Reference) PDF(w io.Writer) error { return writeObject(w, x) }

// PDF writes the stream dictionary, followed by the data from x.R.
func (x *Stream) PDF(w io.Writer) error {
	head := appendObject(nil, x.Dict)
	head = append(head, "\nstream\n"...)
	if _, err := w.Write(head); err != nil {
		return err
	}
	if x.R != nil {
		if _, err := io.Copy(w, x.R); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

func (x Reference) String() string {
	if x.Generation > 0 {
		return fmt.Sprintf("obj_%d@%d", x.Number, x.Generation)
	}
	return fmt.Sprintf("obj_%d", x.Number)
}

// Date converts t into a PDF date string.
func Date(t time.Time) String {
	s := t.Format("D:20060102150405-0700")
	k := len(s) - 2
	return String(s[:k] + "'" + s[k:])
}

// Format returns obj in PDF syntax.  For streams, only the dictionary is
// included.
func Format(obj Object) string {
	if stm, ok := obj.(*Stream); ok {
		obj = stm.Dict
	}
	return string(appendObject(nil, obj))
}

func writeObject(w io.Writer, obj Object) error {
	_, err := w.Write(appendObject(nil, obj))
	return err
}

// appendObject appends the PDF syntax for obj to b.
// Stream data is not included.
func appendObject(b []byte, obj Object) []byte {
	switch x := obj.(type) {
	case nil:
		return append(b, "null"...)
	case Bool:
		return strconv.AppendBool(b, bool(x))
	case Integer:
		return strconv.AppendInt(b, int64(x), 10)
	case Real:
		start := len(b)
		b = strconv.AppendFloat(b, float64(x), 'f', -1, 64)
		if !slices.Contains(b[start:], '.') {
			b = append(b, '.')
		}
		return b
	case String:
		return appendString(b, x)
	case Name:
		return appendName(b, x)
	case Array:
		b = append(b, '[')
		for i, elem := range x {
			if i > 0 {
				b = append(b, ' ')
			}
			b = appendObject(b, elem)
		}
		return append(b, ']')
	case Dict:
		if x == nil {
			return append(b, "null"...)
		}
		keys := make([]Name, 0, len(x))
		for key, val := range x {
			if val != nil {
				keys = append(keys, key)
			}
		}
		slices.Sort(keys)
		b = append(b, "<<"...)
		for _, key := range keys {
			b = append(b, '\n')
			b = appendName(b, key)
			b = append(b, ' ')
			b = appendObject(b, x[key])
		}
		return append(b, "\n>>"...)
	case *Stream:
		return appendObject(b, x.Dict)
	case Reference:
		b = strconv.AppendInt(b, int64(x.Number), 10)
		b = append(b, ' ')
		b = strconv.AppendUint(b, uint64(x.Generation), 10)
		return append(b, " R"...)
	default:
		panic(fmt.Sprintf("unexpected PDF object type %T", obj))
	}
}

// appendString uses the literal form, unless more than a third of the
// bytes would need escaping.  Then the hex form is used.
func appendString(b []byte, s String) []byte {
	depth := 0
	balanced := true
	for _, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			balanced = false
			break
		}
	}
	balanced = balanced && depth == 0

	needsEscape := func(c byte) bool {
		switch {
		case c == '\r' || c == '\n' || c == '\t':
			return false
		case c == '(' || c == ')':
			return !balanced
		}
		return c < 32 || c >= 127 || c == '\\'
	}
	escapes := 0
	for _, c := range s {
		if needsEscape(c) {
			escapes++
		}
	}
	if 3*escapes > len(s) {
		b = append(b, '<')
		for _, c := range s {
			b = append(b, hexDigits[c>>4], hexDigits[c&15])
		}
		return append(b, '>')
	}

	b = append(b, '(')
	for _, c := range s {
		if !needsEscape(c) {
			b = append(b, c)
			continue
		}
		switch c {
		case '\b':
			b = append(b, `\b`...)
		case '\f':
			b = append(b, `\f`...)
		case '(', ')', '\\':
			b = append(b, '\\', c)
		default:
			b = append(b, '\\', '0'+c>>6, '0'+(c>>3)&7, '0'+c&7)
		}
	}
	return append(b, ')')
}

func appendName(b []byte, n Name) []byte {
	b = append(b, '/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter[c] {
			b = append(b, '#', hexDigits[c>>4], hexDigits[c&15])
		} else {
			b = append(b, c)
		}
	}
	return b
}

const hexDigits = "0123456789abcdef"

var isSpace = [256]bool{
	0:    true,
	'\t': true,
	'\n': true,
	'\f': true,
	'\r': true,
	' ':  true,
}

var isDelimiter = [256]bool{
	'(': true,
	')': true,
	'<': true,
	'>': true,
	'[': true,
	']': true,
	'{': true,
	'}': true,
	'/': true,
	'%': true,
}
