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

package image

import (
	"image"

	"seehuhn.de/go/pdfpage/pdf"
)

// Image is a loaded image, ready to be embedded into a PDF file.
type Image struct {
	// Width and Height give the natural size of the image, in pixels.
	Width, Height int

	jpeg           []byte
	jpegColorSpace pdf.Name

	pix *image.NRGBA
}

// Size returns the natural size of the image.
func (im *Image) Size() (width, height int) {
	return im.Width, im.Height
}

// IsPassthrough reports whether the original JPEG data is embedded
// unchanged.
func (im *Image) IsPassthrough() bool {
	return im.jpeg != nil
}

// Embed writes the image to w as an image XObject and returns a reference
// to the image.
func (im *Image) Embed(w *pdf.Writer) (pdf.Reference, error) {
	ref := w.Alloc()

	if im.jpeg != nil {
		dict := pdf.Dict{
			"Type":             pdf.Name("XObject"),
			"Subtype":          pdf.Name("Image"),
			"Width":            pdf.Integer(im.Width),
			"Height":           pdf.Integer(im.Height),
			"ColorSpace":       im.jpegColorSpace,
			"BitsPerComponent": pdf.Integer(8),
			"Filter":           pdf.Name("DCTDecode"),
		}
		stream, err := pdf.NewStream(dict, im.jpeg, false)
		if err != nil {
			return pdf.Reference{}, err
		}
		return ref, w.Put(ref, stream)
	}

	src := im.pix
	width := src.Rect.Dx()
	height := src.Rect.Dy()

	// see Table 89 of PDF 32000-1:2008
	imDict := pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(width),
		"Height":           pdf.Integer(height),
		"ColorSpace":       pdf.Name("DeviceRGB"),
		"BitsPerComponent": pdf.Integer(8),
	}

	rgb := make([]byte, 0, 3*width*height)
	var alpha []byte
	if needsAlphaChannel(src) {
		alpha = make([]byte, 0, width*height)
	}
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+4*width]
		for x := 0; x < width; x++ {
			rgb = append(rgb, row[4*x], row[4*x+1], row[4*x+2])
			if alpha != nil {
				alpha = append(alpha, row[4*x+3])
			}
		}
	}

	if alpha != nil {
		maskRef := w.Alloc()
		imDict["SMask"] = maskRef

		maskDict := pdf.Dict{
			"Type":             pdf.Name("XObject"),
			"Subtype":          pdf.Name("Image"),
			"Width":            pdf.Integer(width),
			"Height":           pdf.Integer(height),
			"ColorSpace":       pdf.Name("DeviceGray"),
			"BitsPerComponent": pdf.Integer(8),
		}
		mask, err := pdf.NewStream(maskDict, alpha, true)
		if err != nil {
			return pdf.Reference{}, err
		}
		err = w.Put(maskRef, mask)
		if err != nil {
			return pdf.Reference{}, err
		}
	}

	stream, err := pdf.NewStream(imDict, rgb, true)
	if err != nil {
		return pdf.Reference{}, err
	}
	return ref, w.Put(ref, stream)
}

// needsAlphaChannel reports whether any pixel of img is not fully opaque.
func needsAlphaChannel(img *image.NRGBA) bool {
	b := img.Rect
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*b.Dx()]
		for x := 3; x < len(row); x += 4 {
			if row[x] != 0xff {
				return true
			}
		}
	}
	return false
}
