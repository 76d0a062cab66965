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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"seehuhn.de/go/pdfpage/document"
	"seehuhn.de/go/pdfpage/metrics"
)

var errTerminal = errors.New("refusing to write PDF data to a terminal")

// runJob applies the job file jobPath to the document in inputPath, or to
// a new document if inputPath is empty, and writes the result to
// outputPath.
func runJob(ctx context.Context, opts *rootOptions, inputPath, jobPath, outputPath string) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	// check this before doing any work
	if outputPath == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errTerminal
	}

	data, err := os.ReadFile(jobPath)
	if err != nil {
		return err
	}
	j, err := parseJob(data, jobPath)
	if err != nil {
		return fmt.Errorf("job %s: %w", jobPath, err)
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		stop := serveMetrics(cfg.MetricsAddr, reg)
		defer stop()
	}

	var doc *document.Document
	if inputPath != "" {
		doc, err = document.Open(inputPath)
		if err != nil {
			return err
		}
	} else {
		doc = document.New()
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	err = j.run(newAssembler(cfg, m), doc)
	if err != nil {
		return err
	}

	wopt := &document.WriteOptions{
		Compress: cfg.Compress,
		Producer: cfg.Producer,
	}
	if outputPath == "-" {
		err = doc.Write(os.Stdout, wopt)
	} else {
		err = doc.Save(outputPath, wopt)
	}
	if err != nil {
		return err
	}
	slog.Info("document written", "output", outputPath, "pages", doc.NumPages())
	return nil
}
