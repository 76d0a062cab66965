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

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"seehuhn.de/go/pdfpage/action"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ActionDone(action.KindText)
	m.ActionDone(action.KindText)
	m.ActionDone(action.KindStroke)
	m.ActionSkipped(action.KindUnknown, "unknown action type \"sparkle\"")
	m.PageDone("create", 5*time.Millisecond, nil)
	m.PageDone("modify", time.Millisecond, errors.New("failed"))

	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("text")); got != 2 {
		t.Errorf("text actions: got %g, want 2", got)
	}
	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("stroke")); got != 1 {
		t.Errorf("stroke actions: got %g, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActionsSkipped.WithLabelValues("unknown")); got != 1 {
		t.Errorf("skipped actions: got %g, want 1", got)
	}
	if got := testutil.ToFloat64(m.PagesTotal.WithLabelValues("create", "ok")); got != 1 {
		t.Errorf("created pages: got %g, want 1", got)
	}
	if got := testutil.ToFloat64(m.PagesTotal.WithLabelValues("modify", "error")); got != 1 {
		t.Errorf("failed modifications: got %g, want 1", got)
	}
	if n := testutil.CollectAndCount(m.PageDuration); n != 2 {
		t.Errorf("duration series: got %d, want 2", n)
	}

	if n, err := testutil.GatherAndCount(reg, "pdfpage_actions_total"); err != nil || n != 2 {
		t.Errorf("registered series: got %d (%v), want 2", n, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ActionDone(action.KindText)
	m.ActionSkipped(action.KindImage, "unsupported image type")
	m.PageDone("load", time.Second, nil)
}
