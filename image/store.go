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

// Package image loads raster images and embeds them into PDF files as
// image XObjects.
//
// JPEG files read from the file system are embedded unchanged, using the
// DCTDecode filter.  All other images are decoded and stored losslessly,
// using the FlateDecode filter.  Transparency is preserved by a soft mask.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register the JPEG decoder
	_ "image/png"  // register the PNG decoder
	"io/fs"
	"os"

	"golang.org/x/image/draw"

	"seehuhn.de/go/pdfpage/action"
)

// ErrDecode is matched by errors for image data which cannot be decoded.
var ErrDecode = errors.New("cannot decode image")

// DecodeError is returned when an image file cannot be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("image %q: %v", err.Path, err.Err)
}

// Unwrap returns the underlying decoder error.
func (err *DecodeError) Unwrap() error {
	return err.Err
}

// Is reports whether target is [ErrDecode].
func (err *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Store loads images.
type Store struct {
	// Assets holds images which are loaded with [action.SourceAssets].
	Assets fs.FS

	// MaxDimension, if positive, limits the width and height of the
	// embedded pixel data.  Larger images are downscaled before embedding.
	// The natural size of the image is not affected.
	MaxDimension int
}

// Load reads and decodes an image.  Images with source [action.SourcePath]
// are read from the file system, images with source [action.SourceAssets]
// are read from s.Assets.
func (s Store) Load(src action.ImageSource, path string) (*Image, error) {
	var data []byte
	var err error
	switch src {
	case action.SourcePath:
		data, err = os.ReadFile(path)
	case action.SourceAssets:
		if s.Assets == nil {
			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
		data, err = fs.ReadFile(s.Assets, path)
	default:
		return nil, fmt.Errorf("image %q: invalid source %q", path, src)
	}
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("empty image")}
	}
	res := &Image{Width: cfg.Width, Height: cfg.Height}

	tooLarge := s.MaxDimension > 0 && max(cfg.Width, cfg.Height) > s.MaxDimension
	if src == action.SourcePath && format == "jpeg" && !tooLarge {
		switch cfg.ColorModel {
		case color.YCbCrModel:
			res.jpeg, res.jpegColorSpace = data, "DeviceRGB"
			return res, nil
		case color.GrayModel:
			res.jpeg, res.jpegColorSpace = data, "DeviceGray"
			return res, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	res.pix = toNRGBA(img, s.MaxDimension)
	return res, nil
}

// toNRGBA converts img to non-premultiplied RGBA, downscaling it so that
// neither side exceeds maxDim, if maxDim is positive.
func toNRGBA(img image.Image, maxDim int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim > 0 && max(w, h) > maxDim {
		scale := float64(maxDim) / float64(max(w, h))
		w = max(1, int(float64(w)*scale+0.5))
		h = max(1, int(float64(h)*scale+0.5))
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst
	}

	if nrgba, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return nrgba
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
