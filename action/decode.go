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

package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/pdfpage/color"
)

// ErrMissingField is matched by errors for required fields which are absent
// or have the wrong type.
var ErrMissingField = errors.New("missing field")

// MissingFieldError reports a required field which is absent.
type MissingFieldError struct {
	Action string // the action type, or "" for page descriptions
	Field  string
}

func (err *MissingFieldError) Error() string {
	if err.Action == "" {
		return fmt.Sprintf("missing field %q", err.Field)
	}
	return fmt.Sprintf("%s action: missing field %q", err.Action, err.Field)
}

// Is allows to use errors.Is(err, ErrMissingField).
func (err *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// FieldTypeError reports a field with a value of the wrong type,
// or with a value outside the allowed set.
type FieldTypeError struct {
	Action string
	Field  string
	Value  any
	Want   string
}

func (err *FieldTypeError) Error() string {
	prefix := ""
	if err.Action != "" {
		prefix = err.Action + " action: "
	}
	return fmt.Sprintf("%sfield %q: expected %s, got %v (%T)",
		prefix, err.Field, err.Want, err.Value, err.Value)
}

// Is allows to use errors.Is(err, ErrMissingField).
func (err *FieldTypeError) Is(target error) bool {
	return target == ErrMissingField
}

// IntPair extracts the integer fields key1 and key2 from f.
//
// If required is true, the absence of either key is an error.  Otherwise,
// a nil pointer is returned for each missing key independently.
// Floating point values are truncated towards zero.
func IntPair(f Fields, key1, key2 string, required bool) (*int, *int, error) {
	var res [2]*int
	for i, key := range []string{key1, key2} {
		val, ok := f[key]
		if !ok || val == nil {
			if required {
				return nil, nil, &MissingFieldError{Field: key}
			}
			continue
		}
		x, err := toInt(key, val)
		if err != nil {
			return nil, nil, err
		}
		res[i] = &x
	}
	return res[0], res[1], nil
}

// Int extracts the required integer field key from f.
// Floating point values are truncated towards zero.
func Int(f Fields, key string) (int, error) {
	val, ok := f[key]
	if !ok || val == nil {
		return 0, &MissingFieldError{Field: key}
	}
	return toInt(key, val)
}

// FloatPair extracts the numeric fields key1 and key2 from f.
// Missing fields are treated as in [IntPair].
func FloatPair(f Fields, key1, key2 string, required bool) (*float64, *float64, error) {
	var res [2]*float64
	for i, key := range []string{key1, key2} {
		val, ok := f[key]
		if !ok || val == nil {
			if required {
				return nil, nil, &MissingFieldError{Field: key}
			}
			continue
		}
		x, err := toFloat(key, val)
		if err != nil {
			return nil, nil, err
		}
		res[i] = &x
	}
	return res[0], res[1], nil
}

func toFloat(key string, val any) (float64, error) {
	switch x := val.(type) {
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		y, err := x.Float64()
		if err == nil {
			return y, nil
		}
	}
	return 0, &FieldTypeError{Field: key, Value: val, Want: "a number"}
}

func toInt(key string, val any) (int, error) {
	switch x := val.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	}
	y, err := toFloat(key, val)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) || math.Abs(y) > math.MaxInt32 {
		return 0, &FieldTypeError{Field: key, Value: val, Want: "an integer"}
	}
	return int(y), nil
}

// decoder extracts the fields of one action.  The first error is kept in
// err, later calls are no-ops.
type decoder struct {
	f      Fields
	action string
	err    error
}

func (d *decoder) setErr(err error) {
	if d.err != nil {
		return
	}
	switch e := err.(type) {
	case *MissingFieldError:
		e.Action = d.action
	case *FieldTypeError:
		e.Action = d.action
	}
	d.err = err
}

func (d *decoder) string(key string) string {
	s, ok := d.optString(key)
	if !ok && d.err == nil {
		d.setErr(&MissingFieldError{Field: key})
	}
	return s
}

func (d *decoder) optString(key string) (string, bool) {
	if d.err != nil {
		return "", false
	}
	val, ok := d.f[key]
	if !ok || val == nil {
		return "", false
	}
	s, ok := val.(string)
	if !ok {
		d.setErr(&FieldTypeError{Field: key, Value: val, Want: "a string"})
		return "", false
	}
	return s, true
}

func (d *decoder) int(key string) int {
	if d.err != nil {
		return 0
	}
	val, ok := d.f[key]
	if !ok || val == nil {
		d.setErr(&MissingFieldError{Field: key})
		return 0
	}
	x, err := toInt(key, val)
	if err != nil {
		d.setErr(err)
	}
	return x
}

func (d *decoder) optInt(key string, dflt int) int {
	if d.err != nil {
		return dflt
	}
	if val, ok := d.f[key]; !ok || val == nil {
		return dflt
	}
	return d.int(key)
}

func (d *decoder) color(key string) color.RGB {
	s := d.string(key)
	if d.err != nil {
		return color.RGB{}
	}
	c, err := color.ParseHex(s)
	if err != nil {
		d.setErr(fmt.Errorf("%s action: field %q: %w", d.action, key, err))
	}
	return c
}

func (d *decoder) intPair(key1, key2 string, required bool) (*int, *int) {
	if d.err != nil {
		return nil, nil
	}
	a, b, err := IntPair(d.f, key1, key2, required)
	if err != nil {
		d.setErr(err)
	}
	return a, b
}

func (d *decoder) floatPair(key1, key2 string) (float64, float64) {
	if d.err != nil {
		return 0, 0
	}
	a, b, err := FloatPair(d.f, key1, key2, true)
	if err != nil {
		d.setErr(err)
		return 0, 0
	}
	return *a, *b
}

// Decode converts the fields of one action into its typed variant.
// Actions with an unrecognized "type" decode to [Unknown].
func Decode(f Fields) (Action, error) {
	d := &decoder{f: f}
	tp := d.string("type")
	if d.err != nil {
		return nil, d.err
	}
	d.action = tp

	var a Action
	switch ParseKind(tp) {
	case KindText:
		x, y := d.intPair("x", "y", true)
		textAlign, _ := d.optString("textAlign")
		res := Text{
			Value:     d.string("value"),
			FontName:  d.string("fontName"),
			FontSize:  d.int("fontSize"),
			Color:     d.color("color"),
			Align:     ParseAlign(textAlign),
			FieldSize: d.optInt("fieldSize", 0),
		}
		if d.err == nil {
			res.X, res.Y = *x, *y
		}
		a = res
	case KindRectangle:
		x, y := d.intPair("x", "y", true)
		w, h := d.intPair("width", "height", true)
		res := Rectangle{Color: d.color("color")}
		if d.err == nil {
			res.X, res.Y, res.Width, res.Height = *x, *y, *w, *h
		}
		a = res
	case KindImage:
		res := Image{
			Type: ImageType(d.string("imageType")),
			Path: d.string("imagePath"),
		}
		// images of unsupported types are never loaded, their source
		// is not checked
		src, ok := d.optString("source")
		switch {
		case !ok:
			res.Source = SourcePath
		case src == string(SourcePath) || src == string(SourceAssets):
			res.Source = ImageSource(src)
		case !res.Type.Supported():
			res.Source = ImageSource(src)
		default:
			d.setErr(&FieldTypeError{Field: "source", Value: src, Want: `"path" or "assets"`})
		}
		x, y := d.intPair("x", "y", true)
		res.Width, res.Height = d.intPair("width", "height", false)
		if d.err == nil {
			res.X, res.Y = *x, *y
		}
		a = res
	case KindMoveTo:
		res := MoveTo{}
		res.X, res.Y = d.floatPair("x", "y")
		res.Color = d.color("color")
		res.StrokeWidth = d.int("strokeWidth")
		a = res
	case KindLineTo:
		res := LineTo{}
		res.X, res.Y = d.floatPair("x", "y")
		res.Color = d.color("color")
		res.StrokeWidth = d.int("strokeWidth")
		a = res
	case KindStroke:
		a = Stroke{}
	case KindTransform:
		a = Transform{}
	case KindSaveGraphicsState:
		a = SaveGraphicsState{}
	case KindRestoreGraphicsState:
		a = RestoreGraphicsState{}
	default:
		a = Unknown{Type: tp}
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

// DecodeList decodes a list of actions.  Every element of list must be
// a map with string keys.
func DecodeList(list []any) ([]Action, error) {
	res := make([]Action, 0, len(list))
	for i, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("action %d: %w",
				i, &FieldTypeError{Field: "actions", Value: item, Want: "an object"})
		}
		a, err := Decode(f)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		res = append(res, a)
	}
	return res, nil
}
