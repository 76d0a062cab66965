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

// Pdfpage draws lists of page actions into PDF files.
//
// Usage:
//
//	pdfpage create [flags] JOB
//	pdfpage edit [flags] INPUT.pdf JOB
//	pdfpage measure [flags] FONT SIZE TEXT
//
// Job files are YAML or JSON5 files which list page operations; see
// parseJob for the format.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"seehuhn.de/go/pdfpage"
	"seehuhn.de/go/pdfpage/font"
	"seehuhn.de/go/pdfpage/image"
	"seehuhn.de/go/pdfpage/interp"
	"seehuhn.de/go/pdfpage/metrics"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	// overrides for config values
	fontDir    string
	assetDir   string
	noCompress bool
}

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err, "kind", pdfpage.Classify(err))
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "pdfpage",
		Short:        "Draw lists of page actions into PDF files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := setupLogger(opts.logLevel, opts.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text or json)")
	flags.StringVar(&opts.fontDir, "font-dir", "", "directory which holds the fonts/ subdirectory")
	flags.StringVar(&opts.assetDir, "asset-dir", "", "root directory of image assets")
	flags.BoolVar(&opts.noCompress, "no-compress", false, "write uncompressed content streams")

	rootCmd.AddCommand(
		buildCreateCmd(opts),
		buildEditCmd(opts),
		buildMeasureCmd(opts),
	)
	return rootCmd
}

func buildCreateCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "create JOB",
		Short: "Create a new PDF file from a job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), opts, "", args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")
	return cmd
}

func buildEditCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "edit INPUT JOB",
		Short: "Apply a job file to an existing PDF file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0]
			}
			return runJob(cmd.Context(), opts, args[0], args[1], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite INPUT)")
	return cmd
}

func buildMeasureCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure FONT SIZE TEXT",
		Short: "Print the size of a text string",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var size int
			_, err := fmt.Sscanf(args[1], "%d", &size)
			if err != nil || size <= 0 {
				return fmt.Errorf("invalid font size %q", args[1])
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			a := newAssembler(cfg, nil)
			ts, err := a.MeasureText(args[0], args[2], size)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", ts.Width, ts.Height)
			return nil
		},
	}
	return cmd
}

// config loads the configuration file and applies the command line
// overrides.
func (opts *rootOptions) config() (*Config, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.fontDir != "" {
		cfg.FontDir = opts.fontDir
	}
	if opts.assetDir != "" {
		cfg.AssetDir = opts.assetDir
	}
	if opts.noCompress {
		cfg.Compress = false
	}
	return cfg, nil
}

func newAssembler(cfg *Config, m *metrics.Metrics) *pdfpage.Assembler {
	a := &pdfpage.Assembler{
		Fonts: interp.FontStore(font.Store{FS: os.DirFS(cfg.FontDir)}),
		Images: interp.ImageStore(image.Store{
			Assets:       os.DirFS(cfg.AssetDir),
			MaxDimension: cfg.MaxImageDimension,
		}),
		Logger: slog.Default(),
	}
	if m != nil {
		a.Observer = m
	}
	return a
}

// setupLogger creates the logger for the given level and format names.
func setupLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	hopts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, hopts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, hopts)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return slog.New(handler), nil
}

// serveMetrics starts the /metrics endpoint.  The returned function stops
// the server.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
