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

package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// decodeStream reads and decodes the data of a stream.
// Only the filters needed for cross-reference streams and object streams
// are supported.
func decodeStream(stm *Stream, resolve func(Object) (Object, error)) ([]byte, error) {
	data, err := io.ReadAll(stm.R)
	if err != nil {
		return nil, err
	}

	filter, err := resolve(stm.Dict["Filter"])
	if err != nil {
		return nil, err
	}
	parms, err := resolve(stm.Dict["DecodeParms"])
	if err != nil {
		return nil, err
	}

	var names []Object
	var params []Object
	switch f := filter.(type) {
	case nil:
		return data, nil
	case Name:
		names = []Object{f}
		params = []Object{parms}
	case Array:
		names = f
		pa, _ := parms.(Array)
		for i := range f {
			var p Object
			if i < len(pa) {
				p = pa[i]
			}
			params = append(params, p)
		}
	default:
		return nil, errors.New("invalid /Filter field")
	}

	for i, name := range names {
		p, err := resolve(params[i])
		if err != nil {
			return nil, err
		}
		data, err = applyFilter(data, name, p)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func applyFilter(data []byte, name Object, param Object) ([]byte, error) {
	n, ok := name.(Name)
	if !ok {
		return nil, fmt.Errorf("invalid filter description %s", Format(name))
	}
	switch n {
	case "FlateDecode":
		params := map[Name]int{
			"Predictor":        1,
			"Colors":           1,
			"BitsPerComponent": 8,
			"Columns":          1,
		}
		if pDict, ok := param.(Dict); ok {
			for key := range params {
				if val, ok := pDict[key].(Integer); ok {
					params[key] = int(val)
				}
			}
		}
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		out, err := io.ReadAll(zr)
		if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0) {
			// Truncated streams are common, use what could be decoded.
			return nil, err
		}
		switch pred := params["Predictor"]; {
		case pred == 1:
			return out, nil
		case pred >= 10 && pred <= 15:
			bpp := (params["Colors"]*params["BitsPerComponent"] + 7) / 8
			rowLen := (params["Colors"]*params["BitsPerComponent"]*params["Columns"] + 7) / 8
			return pngUnfilter(out, bpp, rowLen)
		default:
			return nil, fmt.Errorf("unsupported predictor %d", pred)
		}
	default:
		return nil, fmt.Errorf("unsupported filter %q", n)
	}
}

// pngUnfilter reverses the PNG row filters used by predictors 10 to 15.
// Every row starts with a filter type byte.
func pngUnfilter(data []byte, bpp, rowLen int) ([]byte, error) {
	if bpp < 1 || rowLen < 1 {
		return nil, errors.New("invalid predictor parameters")
	}
	prev := make([]byte, rowLen)
	res := make([]byte, 0, len(data))
	for len(data) > 0 {
		if len(data) < rowLen+1 {
			return nil, errors.New("truncated predictor row")
		}
		tp := data[0]
		row := data[1 : rowLen+1]
		data = data[rowLen+1:]

		cur := make([]byte, rowLen)
		for i, x := range row {
			var a, c byte
			b := prev[i]
			if i >= bpp {
				a = cur[i-bpp]
				c = prev[i-bpp]
			}
			switch tp {
			case 0:
				cur[i] = x
			case 1:
				cur[i] = x + a
			case 2:
				cur[i] = x + b
			case 3:
				cur[i] = x + byte((int(a)+int(b))/2)
			case 4:
				cur[i] = x + paeth(a, b, c)
			default:
				return nil, fmt.Errorf("invalid PNG filter type %d", tp)
			}
		}
		res = append(res, cur...)
		prev = cur
	}
	return res, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
