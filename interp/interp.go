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

// Package interp draws lists of page actions.
//
// An [Interpreter] translates each action into a short sequence of
// low-level drawing operations on a [graphics.Sink].  While doing so, it
// keeps track of whether the page coordinate system has been flipped by a
// transform action.
package interp

import (
	"fmt"
	"log/slog"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpage/action"
	"seehuhn.de/go/pdfpage/font"
	"seehuhn.de/go/pdfpage/graphics"
	"seehuhn.de/go/pdfpage/image"
)

// Font is a font which can be used by text actions.
type Font interface {
	graphics.Font
	Measure(text string, size float64) font.TextSize
}

// FontResolver loads fonts by name.
type FontResolver interface {
	Resolve(name string) (Font, error)
}

// Image is an image which can be used by image actions.
type Image interface {
	graphics.XObject
	Size() (width, height int)
}

// ImageLoader loads images.
type ImageLoader interface {
	Load(src action.ImageSource, path string) (Image, error)
}

// Observer is notified about each action processed by an [Interpreter].
type Observer interface {
	ActionDone(kind action.Kind)
	ActionSkipped(kind action.Kind, reason string)
}

// FontStore returns a FontResolver which loads fonts from s.
func FontStore(s font.Store) FontResolver {
	return fontStore{s}
}

type fontStore struct {
	s font.Store
}

func (fs fontStore) Resolve(name string) (Font, error) {
	f, err := fs.s.Resolve(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ImageStore returns an ImageLoader which loads images from s.
func ImageStore(s image.Store) ImageLoader {
	return imageStore{s}
}

type imageStore struct {
	s image.Store
}

func (is imageStore) Load(src action.ImageSource, path string) (Image, error) {
	im, err := is.s.Load(src, path)
	if err != nil {
		return nil, err
	}
	return im, nil
}

// Interpreter draws page actions.
// The zero value is ready to use, but cannot draw text or images.
type Interpreter struct {
	Fonts  FontResolver
	Images ImageLoader

	// Logger, if set, receives a debug record for every action.
	Logger *slog.Logger

	// Observer, if set, is notified about every action.
	Observer Observer
}

// Run draws the actions onto sink.  The page height is needed for the
// transform action, which moves the origin to the top-left corner.
//
// Processing stops at the first error.  Actions with unknown types and
// images of unsupported types are skipped.
func (in *Interpreter) Run(sink graphics.Sink, pageHeight float64, actions []action.Action) error {
	logger := in.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	st := &runState{
		in:         in,
		sink:       sink,
		logger:     logger,
		pageHeight: pageHeight,
		fonts:      make(map[string]Font),
	}

	for i, a := range actions {
		logger.Debug("action", "index", i, "kind", a.Kind())
		skipped, err := st.do(a)
		if err == nil {
			err = sink.Err()
		}
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.Kind(), err)
		}
		if in.Observer == nil {
			continue
		}
		if skipped != "" {
			in.Observer.ActionSkipped(a.Kind(), skipped)
		} else {
			in.Observer.ActionDone(a.Kind())
		}
	}
	return nil
}

// runState holds the state of a single call to Run.
type runState struct {
	in         *Interpreter
	sink       graphics.Sink
	logger     *slog.Logger
	pageHeight float64

	fonts   map[string]Font
	flipped bool
}

// flip is the matrix used to undo the effect of a transform action,
// so that text and images appear upright.
var flip = matrix.Matrix{1, 0, 0, -1, 0, 0}

// do processes a single action.  If the action is skipped, the reason is
// returned.
func (st *runState) do(a action.Action) (string, error) {
	sink := st.sink
	switch a := a.(type) {
	case action.Text:
		return "", st.text(a)

	case action.Rectangle:
		sink.Rectangle(float64(a.X), float64(a.Y), float64(a.Width), float64(a.Height))
		sink.SetFillColor(a.Color)
		sink.Fill()

	case action.Image:
		return st.image(a)

	case action.MoveTo:
		sink.SetLineWidth(float64(a.StrokeWidth))
		sink.SetStrokeColor(a.Color)
		sink.MoveTo(a.X, a.Y)

	case action.LineTo:
		sink.SetLineWidth(float64(a.StrokeWidth))
		sink.SetStrokeColor(a.Color)
		sink.LineTo(a.X, a.Y)

	case action.Stroke:
		sink.Stroke()

	case action.Transform:
		m := matrix.Scale(1, -1).Mul(matrix.Translate(0, st.pageHeight))
		sink.Transform(m)
		st.flipped = true

	case action.SaveGraphicsState:
		sink.PushGraphicsState()

	case action.RestoreGraphicsState:
		sink.PopGraphicsState()
		st.flipped = false

	case action.Unknown:
		reason := fmt.Sprintf("unknown action type %q", a.Type)
		st.logger.Debug("skipping action", "reason", reason)
		return reason, nil

	default:
		reason := fmt.Sprintf("unsupported action %T", a)
		st.logger.Debug("skipping action", "reason", reason)
		return reason, nil
	}
	return "", nil
}

func (st *runState) font(name string) (Font, error) {
	if f, ok := st.fonts[name]; ok {
		return f, nil
	}
	if st.in.Fonts == nil {
		return nil, &font.NotFoundError{Name: name}
	}
	f, err := st.in.Fonts.Resolve(name)
	if err != nil {
		return nil, err
	}
	st.fonts[name] = f
	return f, nil
}

func (st *runState) text(a action.Text) error {
	f, err := st.font(a.FontName)
	if err != nil {
		return err
	}
	size := f.Measure(a.Value, float64(a.FontSize))

	x, y := a.X, a.Y
	if a.FieldSize > 0 {
		switch a.Align {
		case action.AlignCenter:
			x = a.X + a.FieldSize/2 - size.Width/2
		case action.AlignRight:
			x = a.X + a.FieldSize - size.Width
		}
	}

	sink := st.sink
	if st.flipped {
		sink.PushGraphicsState()
		sink.Transform(flip)
		y = -y - size.Height
	}
	sink.TextBegin()
	sink.SetFillColor(a.Color)
	sink.TextSetFont(f, float64(a.FontSize))
	sink.TextFirstLine(float64(x), float64(y))
	sink.TextShow(a.Value)
	sink.TextEnd()
	if st.flipped {
		sink.PopGraphicsState()
	}
	return nil
}

func (st *runState) image(a action.Image) (string, error) {
	if !a.Type.Supported() {
		reason := fmt.Sprintf("unsupported image type %q", a.Type)
		st.logger.Debug("skipping action", "reason", reason)
		return reason, nil
	}
	if st.in.Images == nil {
		return "", fmt.Errorf("image %q: no image loader", a.Path)
	}
	src := a.Source
	if src == "" {
		src = action.SourcePath
	}
	im, err := st.in.Images.Load(src, a.Path)
	if err != nil {
		return "", err
	}

	width, height := im.Size()
	if a.Width != nil && a.Height != nil {
		width, height = *a.Width, *a.Height
	}

	x, y := a.X, a.Y
	sink := st.sink
	if st.flipped {
		sink.PushGraphicsState()
		sink.Transform(flip)
		y = -y - height
	}
	if width <= 0 || height <= 0 {
		width, height = im.Size()
	}
	sink.DrawXObject(im, float64(x), float64(y), float64(width), float64(height))
	if st.flipped {
		sink.PopGraphicsState()
	}
	return "", nil
}
