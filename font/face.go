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

package font

import (
	"errors"
	"sync"

	"golang.org/x/text/unicode/norm"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/pdfpage/pdf"
)

// TextSize gives the size of a text string, in PDF units.
type TextSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Face is a loaded font.
//
// A Face records all glyphs which have been encoded using [Face.Encode],
// so that the information needed for text extraction can be included
// when the font is embedded.  The methods of Face are safe for concurrent
// use.
type Face struct {
	info *sfnt.Font
	cmap cmap.Subtable

	mu   sync.Mutex
	used map[glyph.ID][]rune
}

// NewFace prepares a parsed font for use.
func NewFace(info *sfnt.Font) (*Face, error) {
	if info.UnitsPerEm == 0 {
		return nil, errors.New("invalid unitsPerEm")
	}
	if !info.IsGlyf() && !info.IsCFF() {
		return nil, errors.New("unsupported glyph outlines")
	}
	subtable, err := info.CMapTable.GetBest()
	if err != nil {
		return nil, err
	}
	return &Face{
		info: info,
		cmap: subtable,
		used: make(map[glyph.ID][]rune),
	}, nil
}

// PostScriptName returns the PostScript name of the font.
func (f *Face) PostScriptName() string {
	return f.info.PostScriptName()
}

// Measure returns the width and the cap height of text, set in the given
// font size.  Both values are truncated to integers.
// Characters which are not in the font use the advance width of the
// .notdef glyph.
func (f *Face) Measure(text string, size float64) TextSize {
	var width float64
	for _, r := range norm.NFC.String(text) {
		gid := f.cmap.Lookup(r)
		width += float64(f.info.GlyphWidth(gid))
	}

	capHeight := f.info.CapHeight
	if capHeight == 0 {
		capHeight = f.info.Ascent
	}

	q := size / float64(f.info.UnitsPerEm)
	return TextSize{
		Width:  int(width * q),
		Height: int(float64(capHeight) * q),
	}
}

// Encode converts text into a PDF string, using two-byte glyph IDs as
// character codes.
func (f *Face) Encode(text string) pdf.String {
	text = norm.NFC.String(text)

	f.mu.Lock()
	defer f.mu.Unlock()

	res := make(pdf.String, 0, 2*len(text))
	for _, r := range text {
		gid := f.cmap.Lookup(r)
		res = append(res, byte(gid>>8), byte(gid))
		if _, seen := f.used[gid]; !seen && gid != 0 {
			f.used[gid] = []rune{r}
		}
	}
	return res
}
