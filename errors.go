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
	"io/fs"

	"seehuhn.de/go/pdfpage/action"
	"seehuhn.de/go/pdfpage/color"
	"seehuhn.de/go/pdfpage/document"
	"seehuhn.de/go/pdfpage/font"
	"seehuhn.de/go/pdfpage/image"
	"seehuhn.de/go/pdfpage/pdf"
)

// ErrorKind classifies the errors returned by this module.
type ErrorKind int

// These are the possible error kinds.
const (
	Unknown ErrorKind = iota
	MissingField
	MalformedColor
	FontNotFound
	PageIndexOutOfRange
	ImageDecodeFailure
	IOFailure
)

func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "MissingField"
	case MalformedColor:
		return "MalformedColor"
	case FontNotFound:
		return "FontNotFound"
	case PageIndexOutOfRange:
		return "PageIndexOutOfRange"
	case ImageDecodeFailure:
		return "ImageDecodeFailure"
	case IOFailure:
		return "IOFailure"
	default:
		return "Unknown"
	}
}

// Classify returns the kind of err.
// If err is nil, Unknown is returned.
func Classify(err error) ErrorKind {
	var pathErr *fs.PathError
	var malformed *pdf.MalformedFileError
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, action.ErrMissingField):
		return MissingField
	case errors.Is(err, color.ErrMalformed):
		return MalformedColor
	case errors.Is(err, font.ErrNotFound):
		return FontNotFound
	case errors.Is(err, document.ErrPageIndexOutOfRange):
		return PageIndexOutOfRange
	case errors.Is(err, image.ErrDecode):
		return ImageDecodeFailure
	case errors.As(err, &pathErr), errors.As(err, &malformed), errors.Is(err, pdf.ErrEncrypted):
		return IOFailure
	default:
		return Unknown
	}
}
