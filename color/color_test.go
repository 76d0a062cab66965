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

package color

import (
	"errors"
	"testing"
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want RGB
	}{
		{"#FF0000", RGB{255, 0, 0}},
		{"#00FF00", RGB{0, 255, 0}},
		{"#0000ff", RGB{0, 0, 255}},
		{"#000000", Black},
		{"#F0f0F0", RGB{240, 240, 240}},
		{"#123456", RGB{0x12, 0x34, 0x56}},
	}
	for _, c := range cases {
		got, err := ParseHex(c.in)
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseHexMalformed(t *testing.T) {
	for _, in := range []string{"", "#", "FF0000", "#FF00", "#FF00000", "#GG0000", "#+10000", "FF0000FF", "#ff 000"} {
		_, err := ParseHex(in)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: expected ErrMalformed, got %v", in, err)
		}
		var mErr *MalformedError
		if !errors.As(err, &mErr) || mErr.Input != in {
			t.Errorf("%q: expected *MalformedError, got %v", in, err)
		}
	}
}

func TestString(t *testing.T) {
	c := RGB{R: 0xAB, G: 0x01, B: 0xFF}
	if s := c.String(); s != "#ab01ff" {
		t.Errorf("got %q", s)
	}
	back, err := ParseHex(c.String())
	if err != nil || back != c {
		t.Errorf("round trip failed: %v %v", back, err)
	}
}
