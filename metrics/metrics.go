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

// Package metrics exports Prometheus metrics for page assembly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"seehuhn.de/go/pdfpage/action"
)

// Metrics counts processed actions and page operations.
// All methods can be called on a nil *Metrics, and do nothing in this case.
type Metrics struct {
	ActionsTotal   *prometheus.CounterVec
	ActionsSkipped *prometheus.CounterVec
	PagesTotal     *prometheus.CounterVec
	PageDuration   *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
// If reg is nil, the metrics are not registered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfpage_actions_total",
			Help: "Total number of page actions drawn, by action type",
		}, []string{"kind"}),
		ActionsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfpage_actions_skipped_total",
			Help: "Total number of page actions skipped, by action type",
		}, []string{"kind"}),
		PagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdfpage_pages_total",
			Help: "Total number of page operations, by operation and result",
		}, []string{"operation", "result"}),
		PageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdfpage_page_duration_seconds",
			Help:    "Time spent on page operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
	}
}

// ActionDone records an action which has been drawn.
func (m *Metrics) ActionDone(kind action.Kind) {
	if m == nil || m.ActionsTotal == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind.String()).Inc()
}

// ActionSkipped records an action which has been skipped.
// The reason is not recorded, to keep the number of label values bounded.
func (m *Metrics) ActionSkipped(kind action.Kind, reason string) {
	if m == nil || m.ActionsSkipped == nil {
		return
	}
	m.ActionsSkipped.WithLabelValues(kind.String()).Inc()
}

// PageDone records a finished page operation.
func (m *Metrics) PageDone(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	if m.PagesTotal != nil {
		m.PagesTotal.WithLabelValues(operation, result).Inc()
	}
	if m.PageDuration != nil {
		m.PageDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}
