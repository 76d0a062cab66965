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

// Package font loads TrueType and OpenType fonts and prepares them for use
// in PDF content streams.
//
// Fonts are looked up by name in a [Store].  The resulting [Face] measures
// text, encodes text as glyph IDs, and embeds itself into a PDF file as a
// composite font with Identity-H encoding.
package font

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"seehuhn.de/go/sfnt"
)

// Store locates font files in a file system.
// A font with name n is read from "fonts/n.ttf", or from "fonts/n.otf"
// if no .ttf file exists.
type Store struct {
	FS fs.FS
}

// ErrNotFound is matched by errors for fonts which cannot be loaded.
var ErrNotFound = errors.New("font not found")

// NotFoundError is returned by [Store.Resolve] if a font file is missing
// or cannot be parsed.
type NotFoundError struct {
	Name string
	Err  error
}

func (err *NotFoundError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("font %q not found", err.Name)
	}
	return fmt.Sprintf("font %q: %v", err.Name, err.Err)
}

// Unwrap returns the underlying error, if any.
func (err *NotFoundError) Unwrap() error {
	return err.Err
}

// Is reports whether target is [ErrNotFound].
func (err *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

var fontExtensions = []string{".ttf", ".otf"}

// Resolve reads and parses the font with the given name.
// Each call reads the font file anew.
func (s Store) Resolve(name string) (*Face, error) {
	if s.FS == nil || name == "" || !fs.ValidPath(name) || path.Base(name) != name {
		return nil, &NotFoundError{Name: name}
	}

	var data []byte
	var err error
	for _, ext := range fontExtensions {
		data, err = fs.ReadFile(s.FS, path.Join("fonts", name+ext))
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if err != nil {
		return nil, &NotFoundError{Name: name, Err: err}
	}

	info, err := sfnt.Read(bytes.NewReader(data))
	if err != nil {
		return nil, &NotFoundError{Name: name, Err: err}
	}
	face, err := NewFace(info)
	if err != nil {
		return nil, &NotFoundError{Name: name, Err: err}
	}
	return face, nil
}
