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
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pdfpage/action"
)

// MediaBox gives the position and size of a new page, in PDF units.
type MediaBox struct {
	X, Y          int
	Width, Height int
}

// Rect returns the media box as a rectangle.
func (b MediaBox) Rect() rect.Rect {
	return rect.Rect{
		LLx: float64(b.X),
		LLy: float64(b.Y),
		URx: float64(b.X + b.Width),
		URy: float64(b.Y + b.Height),
	}
}

// CreateRequest describes a new page.
type CreateRequest struct {
	MediaBox MediaBox
	Actions  []action.Action
}

// LoadRequest selects an existing page.  If FilePath is set, the page is
// taken from that file instead of the current document.
type LoadRequest struct {
	PageIndex int
	FilePath  string
}

// ModifyRequest describes actions to be drawn on top of an existing page.
type ModifyRequest struct {
	PageIndex int
	Actions   []action.Action
}

// DecodeCreate decodes a page creation request of the form
//
//	{mediaBox: {x, y, width, height}, actions: [...]}
//
// The width and height of the media box must be positive.
func DecodeCreate(f map[string]any) (*CreateRequest, error) {
	boxVal, ok := f["mediaBox"]
	if !ok || boxVal == nil {
		return nil, &action.MissingFieldError{Field: "mediaBox"}
	}
	box, ok := boxVal.(map[string]any)
	if !ok {
		return nil, &action.FieldTypeError{Field: "mediaBox", Value: boxVal, Want: "an object"}
	}
	x, y, err := action.IntPair(box, "x", "y", true)
	if err != nil {
		return nil, err
	}
	w, h, err := action.IntPair(box, "width", "height", true)
	if err != nil {
		return nil, err
	}
	if *w <= 0 {
		return nil, &action.FieldTypeError{Field: "width", Value: *w, Want: "a positive integer"}
	}
	if *h <= 0 {
		return nil, &action.FieldTypeError{Field: "height", Value: *h, Want: "a positive integer"}
	}

	actions, err := decodeActions(f)
	if err != nil {
		return nil, err
	}
	return &CreateRequest{
		MediaBox: MediaBox{X: *x, Y: *y, Width: *w, Height: *h},
		Actions:  actions,
	}, nil
}

// DecodeLoad decodes a page load request of the form
//
//	{pageIndex, filePath}
//
// The filePath field is optional.
func DecodeLoad(f map[string]any) (*LoadRequest, error) {
	idx, err := action.Int(f, "pageIndex")
	if err != nil {
		return nil, err
	}
	res := &LoadRequest{PageIndex: idx}
	if val, ok := f["filePath"]; ok && val != nil {
		s, ok := val.(string)
		if !ok {
			return nil, &action.FieldTypeError{Field: "filePath", Value: val, Want: "a string"}
		}
		res.FilePath = s
	}
	return res, nil
}

// DecodeModify decodes a page modification request of the form
//
//	{pageIndex, actions: [...]}
func DecodeModify(f map[string]any) (*ModifyRequest, error) {
	idx, err := action.Int(f, "pageIndex")
	if err != nil {
		return nil, err
	}
	actions, err := decodeActions(f)
	if err != nil {
		return nil, err
	}
	return &ModifyRequest{PageIndex: idx, Actions: actions}, nil
}

// decodeActions decodes the "actions" field of f.  A missing field is
// treated as an empty list.
func decodeActions(f map[string]any) ([]action.Action, error) {
	val, ok := f["actions"]
	if !ok || val == nil {
		return nil, nil
	}
	list, ok := val.([]any)
	if !ok {
		return nil, &action.FieldTypeError{Field: "actions", Value: val, Want: "a list"}
	}
	return action.DecodeList(list)
}
