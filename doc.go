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

// Package pdfpage draws lists of declarative page actions into PDF
// documents.
//
// An action list describes the content of a single page: text, filled
// rectangles, images, straight line paths, graphics state changes, and a
// transform which moves the origin to the top-left corner of the page.
// The [Assembler] creates new pages from action lists, draws action lists
// on top of existing pages, and loads pages from other PDF files.
//
// Action lists are usually decoded from JSON or YAML data, using
// [DecodeCreate], [DecodeLoad], and [DecodeModify].  Errors can be
// mapped to broad categories using [Classify].
package pdfpage
