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

// Package action defines the drawing actions which can be applied to a page.
//
// Actions normally arrive as structured data, for example decoded from
// JSON or YAML, and are converted into the typed variants of this package
// by [Decode] and [DecodeList].  The set of variants is closed: every
// action is one of [Text], [Rectangle], [Image], [MoveTo], [LineTo],
// [Stroke], [Transform], [SaveGraphicsState], [RestoreGraphicsState] or
// [Unknown].
package action

import "seehuhn.de/go/pdfpage/color"

// Fields holds the fields of one action, or of a page description,
// as decoded from JSON or YAML.
type Fields = map[string]any

// Kind identifies the variant of an action.
type Kind int

// These are the supported kinds of action.
const (
	KindUnknown Kind = iota
	KindText
	KindRectangle
	KindImage
	KindMoveTo
	KindLineTo
	KindStroke
	KindTransform
	KindSaveGraphicsState
	KindRestoreGraphicsState
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	KindText:                 "text",
	KindRectangle:            "rectangle",
	KindImage:                "image",
	KindMoveTo:               "moveTo",
	KindLineTo:               "lineTo",
	KindStroke:               "stroke",
	KindTransform:            "transform",
	KindSaveGraphicsState:    "saveGraphicsState",
	KindRestoreGraphicsState: "restoreGraphicsState",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind returns the kind for the given value of the "type" field.
// Unrecognized values map to KindUnknown.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s && k != KindUnknown {
			return k
		}
	}
	return KindUnknown
}

// Action is one drawing instruction.
type Action interface {
	Kind() Kind
}

// Align gives the horizontal alignment of text within its field.
type Align int

// These are the supported text alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// ParseAlign converts the value of a "textAlign" field.
// Unrecognized values are treated as left alignment.
func ParseAlign(s string) Align {
	switch s {
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// Text draws a single line of text.
type Text struct {
	Value    string
	FontName string
	FontSize int
	X, Y     int
	Color    color.RGB

	// If FieldSize is positive, the text is aligned within a field of
	// this width which starts at X.
	Align     Align
	FieldSize int
}

// Rectangle draws a filled rectangle.
type Rectangle struct {
	X, Y          int
	Width, Height int
	Color         color.RGB
}

// ImageType is the value of the "imageType" field of an image action.
type ImageType string

// These are the image types which can be drawn.
// Image actions with other types are ignored.
const (
	ImageJPEG ImageType = "jpg"
	ImagePNG  ImageType = "png"
)

// Supported reports whether images of this type can be drawn.
func (t ImageType) Supported() bool {
	return t == ImageJPEG || t == ImagePNG
}

// ImageSource tells where the data of an image is loaded from.
type ImageSource string

// These are the valid image sources.
const (
	// SourcePath loads images from the file system.
	SourcePath ImageSource = "path"

	// SourceAssets loads images from the bundled assets.
	SourceAssets ImageSource = "assets"
)

// Image draws an image.
type Image struct {
	Type   ImageType
	Path   string
	Source ImageSource
	X, Y   int

	// Width and Height are nil if the corresponding field was absent.
	// The natural size of the image is only overridden if both are present.
	Width, Height *int
}

// MoveTo starts a new subpath.
type MoveTo struct {
	X, Y        float64
	Color       color.RGB
	StrokeWidth int
}

// LineTo appends a straight line segment to the current path.
type LineTo struct {
	X, Y        float64
	Color       color.RGB
	StrokeWidth int
}

// Stroke paints the current path.
type Stroke struct{}

// Transform flips the page coordinate system, so that the origin is in the
// top-left corner and y coordinates grow downwards.
type Transform struct{}

// SaveGraphicsState saves the current graphics state.
type SaveGraphicsState struct{}

// RestoreGraphicsState restores the most recently saved graphics state.
type RestoreGraphicsState struct{}

// Unknown is an action with an unrecognized type.  Unknown actions are
// skipped when a page is drawn.
type Unknown struct {
	Type string
}

func (Text) Kind() Kind                 { return KindText }
func (Rectangle) Kind() Kind            { return KindRectangle }
func (Image) Kind() Kind                { return KindImage }
func (MoveTo) Kind() Kind               { return KindMoveTo }
func (LineTo) Kind() Kind               { return KindLineTo }
func (Stroke) Kind() Kind               { return KindStroke }
func (Transform) Kind() Kind            { return KindTransform }
func (SaveGraphicsState) Kind() Kind    { return KindSaveGraphicsState }
func (RestoreGraphicsState) Kind() Kind { return KindRestoreGraphicsState }
func (Unknown) Kind() Kind              { return KindUnknown }
