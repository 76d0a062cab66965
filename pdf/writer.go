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

// Writer represents a PDF file open for writing.
// Use [NewWriter] to create a new Writer, allocate object numbers
// with [Writer.Alloc], write objects with [Writer.Put] and finish the file
// with [Writer.Close].
type Writer struct {
	Version Version

	w       *posWriter
	nextRef int
	xref    map[int]int64
}

// NewWriter prepares a PDF file for writing.  The PDF header is written
// immediately.
func NewWriter(w io.Writer, ver Version) (*Writer, error) {
	if ver < V1_0 || ver > V2_0 {
		return nil, errVersion
	}
	pdf := &Writer{
		Version: ver,
		w:       &posWriter{w: w},
		nextRef: 1,
		xref:    make(map[int]int64),
	}

	_, err := fmt.Fprintf(pdf.w, "%%PDF-%s\n%%\x80\x80\x80\x80\n", ver)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// Alloc allocates an object number for an indirect object.
func (pdf *Writer) Alloc() Reference {
	res := Reference{Number: pdf.nextRef}
	pdf.nextRef++
	return res
}

// Put writes obj as the indirect object ref.
// Every reference can be written only once.
func (pdf *Writer) Put(ref Reference, obj Object) error {
	if pdf.w == nil {
		return errors.New("PDF file already closed")
	}
	if ref.Number <= 0 || ref.Number >= pdf.nextRef {
		return fmt.Errorf("reference %s was not allocated", ref)
	}
	if _, seen := pdf.xref[ref.Number]; seen {
		return fmt.Errorf("object %s already written", ref)
	}
	if obj == nil {
		return nil
	}

	pos := pdf.w.pos
	_, err := fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number, ref.Generation)
	if err != nil {
		return err
	}
	err = obj.PDF(pdf.w)
	if err != nil {
		return err
	}
	_, err = io.WriteString(pdf.w, "\nendobj\n")
	if err != nil {
		return err
	}

	pdf.xref[ref.Number] = pos
	return nil
}

// Close writes the cross-reference table and the trailer.
// The trailer must contain the /Root entry; /Size is filled in
// automatically.  If the underlying writer implements io.Closer, it is
// closed.
func (pdf *Writer) Close(trailer Dict) error {
	if pdf.w == nil {
		return errors.New("PDF file already closed")
	}
	if _, ok := trailer["Root"].(Reference); !ok {
		return errors.New("missing /Root in trailer")
	}

	xRefDict := Dict{}
	for key, val := range trailer {
		xRefDict[key] = val
	}
	xRefDict["Size"] = Integer(pdf.nextRef)

	xRefPos := pdf.w.pos
	err := pdf.writeXRefTable(xRefDict)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pdf.w, "\nstartxref\n%d\n%%%%EOF\n", xRefPos)
	if err != nil {
		return err
	}

	out := pdf.w.w
	pdf.w = nil
	if closer, ok := out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (pdf *Writer) writeXRefTable(xRefDict Dict) error {
	_, err := fmt.Fprintf(pdf.w, "xref\n0 %d\n", pdf.nextRef)
	if err != nil {
		return err
	}
	for i := 0; i < pdf.nextRef; i++ {
		pos, ok := pdf.xref[i]
		if ok {
			_, err = fmt.Fprintf(pdf.w, "%010d 00000 n\r\n", pos)
		} else {
			_, err = io.WriteString(pdf.w, "0000000000 65535 f\r\n")
		}
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(pdf.w, "trailer\n")
	if err != nil {
		return err
	}
	return xRefDict.PDF(pdf.w)
}

// NewStream returns a stream object holding data.  If compress is set, the
// data is encoded using the FlateDecode filter.  The /Length entry is set
// automatically.
func NewStream(dict Dict, data []byte, compress bool) (*Stream, error) {
	res := Dict{}
	for key, val := range dict {
		res[key] = val
	}
	if compress {
		buf := &bytes.Buffer{}
		zw := zlib.NewWriter(buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		data = buf.Bytes()
		res["Filter"] = Name("FlateDecode")
	}
	res["Length"] = Integer(len(data))
	return &Stream{Dict: res, R: bytes.NewReader(data)}, nil
}

type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
