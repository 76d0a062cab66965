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
	"bytes"
	"fmt"
	"math"
	"slices"
	"text/template"
	"unicode/utf16"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/pdfpage/pdf"
)

// Font descriptor flags, see section 9.8.2 of PDF 32000-1:2008.
const (
	flagFixedPitch = 1 << 0
	flagSerif      = 1 << 1
	flagSymbolic   = 1 << 2
	flagScript     = 1 << 3
	flagItalic     = 1 << 6
	flagForceBold  = 1 << 18
)

// Embed writes the font to w as a composite font with Identity-H encoding
// and returns a reference to the font dictionary.  The complete font
// program is included.
//
// Fonts with glyf outlines are embedded as CIDFontType2 with a FontFile2
// stream, fonts with CFF outlines as CIDFontType0 with a FontFile3 stream.
func (f *Face) Embed(w *pdf.Writer) (pdf.Reference, error) {
	info := f.info
	psName := pdf.Name(info.PostScriptName())
	if psName == "" {
		psName = "Font"
	}

	fontDictRef := w.Alloc()
	cidFontRef := w.Alloc()
	descriptorRef := w.Alloc()
	fontFileRef := w.Alloc()
	toUnicodeRef := w.Alloc()

	q := 1000 / float64(info.UnitsPerEm)

	fontDict := pdf.Dict{
		"Type":            pdf.Name("Font"),
		"Subtype":         pdf.Name("Type0"),
		"BaseFont":        psName + "-Identity-H",
		"Encoding":        pdf.Name("Identity-H"),
		"DescendantFonts": pdf.Array{cidFontRef},
		"ToUnicode":       toUnicodeRef,
	}

	cidFontDict := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"BaseFont": psName,
		"CIDSystemInfo": pdf.Dict{
			"Registry":   pdf.String("Adobe"),
			"Ordering":   pdf.String("Identity"),
			"Supplement": pdf.Integer(0),
		},
		"FontDescriptor": descriptorRef,
	}

	var fontFile bytes.Buffer
	var fontFileDict pdf.Dict
	var fontFileKey pdf.Name
	switch {
	case info.IsGlyf():
		cidFontDict["Subtype"] = pdf.Name("CIDFontType2")
		cidFontDict["CIDToGIDMap"] = pdf.Name("Identity")
		n, err := info.WriteTrueTypePDF(&fontFile)
		if err != nil {
			return pdf.Reference{}, fmt.Errorf("font %q: %w", psName, err)
		}
		fontFileKey = "FontFile2"
		fontFileDict = pdf.Dict{"Length1": pdf.Integer(n)}
	case info.IsCFF():
		cidFontDict["Subtype"] = pdf.Name("CIDFontType0")
		err := info.WriteOpenTypeCFFPDF(&fontFile)
		if err != nil {
			return pdf.Reference{}, fmt.Errorf("font %q: %w", psName, err)
		}
		fontFileKey = "FontFile3"
		fontFileDict = pdf.Dict{"Subtype": pdf.Name("OpenType")}
	default:
		return pdf.Reference{}, fmt.Errorf("font %q: unsupported glyph outlines", psName)
	}

	f.mu.Lock()
	used := make(map[glyph.ID][]rune, len(f.used))
	for gid, text := range f.used {
		used[gid] = text
	}
	f.mu.Unlock()

	widths := make(map[glyph.ID]float64, len(used))
	for gid := range used {
		widths[gid] = math.Round(float64(info.GlyphWidth(gid)) * q)
	}
	dw := math.Round(float64(info.GlyphWidth(0)) * q)
	cidFontDict["DW"] = pdf.Integer(dw)
	if ww := encodeWidths(widths, dw); len(ww) > 0 {
		cidFontDict["W"] = ww
	}

	var maxAdvance float64
	for gid := range info.NumGlyphs() {
		maxAdvance = max(maxAdvance, float64(info.GlyphWidth(glyph.ID(gid))))
	}
	flags := flagSymbolic
	if info.IsFixedPitch() {
		flags |= flagFixedPitch
	}
	if info.IsSerif {
		flags |= flagSerif
	}
	if info.IsScript {
		flags |= flagScript
	}
	if info.IsItalic {
		flags |= flagItalic
	}
	if info.IsBold {
		flags |= flagForceBold
	}
	capHeight := info.CapHeight
	if capHeight == 0 {
		capHeight = info.Ascent
	}
	descriptor := pdf.Dict{
		"Type":     pdf.Name("FontDescriptor"),
		"FontName": psName,
		"Flags":    pdf.Integer(flags),
		"FontBBox": pdf.Array{
			pdf.Integer(0),
			pdf.Integer(math.Round(float64(info.Descent) * q)),
			pdf.Integer(math.Round(maxAdvance * q)),
			pdf.Integer(math.Round(float64(info.Ascent) * q)),
		},
		"ItalicAngle": pdf.Real(info.ItalicAngle),
		"Ascent":      pdf.Integer(math.Round(float64(info.Ascent) * q)),
		"Descent":     pdf.Integer(math.Round(float64(info.Descent) * q)),
		"CapHeight":   pdf.Integer(math.Round(float64(capHeight) * q)),
		"StemV":       pdf.Integer(0),
		fontFileKey:   fontFileRef,
	}
	if info.FamilyName != "" {
		descriptor["FontFamily"] = pdf.String(info.FamilyName)
	}

	fontFileStream, err := pdf.NewStream(fontFileDict, fontFile.Bytes(), true)
	if err != nil {
		return pdf.Reference{}, err
	}

	cmapData := &bytes.Buffer{}
	err = toUnicodeTmpl.Execute(cmapData, toUnicodeChunks(used))
	if err != nil {
		return pdf.Reference{}, err
	}
	toUnicodeStream, err := pdf.NewStream(nil, cmapData.Bytes(), true)
	if err != nil {
		return pdf.Reference{}, err
	}

	refs := []pdf.Reference{fontDictRef, cidFontRef, descriptorRef, fontFileRef, toUnicodeRef}
	objs := []pdf.Object{fontDict, cidFontDict, descriptor, fontFileStream, toUnicodeStream}
	for i, ref := range refs {
		err := w.Put(ref, objs[i])
		if err != nil {
			return pdf.Reference{}, err
		}
	}
	return fontDictRef, nil
}

// encodeWidths constructs the W entry of a CIDFont dictionary.
// Glyphs with the default width dw are omitted.  Runs of consecutive
// glyphs are collected into arrays.
func encodeWidths(widths map[glyph.ID]float64, dw float64) pdf.Array {
	var gids []glyph.ID
	for gid, w := range widths {
		if w != dw {
			gids = append(gids, gid)
		}
	}
	slices.Sort(gids)

	var res pdf.Array
	var run pdf.Array
	var runStart glyph.ID
	for i, gid := range gids {
		if i > 0 && gid != gids[i-1]+1 {
			res = append(res, pdf.Integer(runStart), run)
			run = nil
		}
		if len(run) == 0 {
			runStart = gid
		}
		run = append(run, pdf.Integer(widths[gid]))
	}
	if len(run) > 0 {
		res = append(res, pdf.Integer(runStart), run)
	}
	return res
}

type bfChar struct {
	Code glyph.ID
	Text []rune
}

func (c bfChar) String() string {
	var text []byte
	for _, x := range utf16.Encode(c.Text) {
		text = append(text, byte(x>>8), byte(x))
	}
	return fmt.Sprintf("<%04X> <%02X>", uint16(c.Code), text)
}

const chunkSize = 100

// toUnicodeChunks returns the bfchar entries for the used glyphs, sorted
// by glyph ID, in chunks of at most 100 entries.
func toUnicodeChunks(used map[glyph.ID][]rune) [][]bfChar {
	var all []bfChar
	for gid, text := range used {
		all = append(all, bfChar{Code: gid, Text: text})
	}
	slices.SortFunc(all, func(a, b bfChar) int { return int(a.Code) - int(b.Code) })

	var res [][]bfChar
	for len(all) > chunkSize {
		res = append(res, all[:chunkSize])
		all = all[chunkSize:]
	}
	if len(all) > 0 {
		res = append(res, all)
	}
	return res
}

var toUnicodeTmpl = template.Must(template.New("CMap").Parse(
	`/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo 3 dict dup begin
/Registry (Adobe) def
/Ordering (UCS) def
/Supplement 0 def
end def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
{{range . -}}
{{len .}} beginbfchar
{{range . -}}
{{.}}
{{end -}}
endbfchar
{{end -}}
endcmap
CMapName currentdict /CMap defineresource pop
end
end
`))
