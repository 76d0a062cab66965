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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("PDFPAGE_TEST_FONTS", "/usr/share/pdfpage")

	cfg := defaultConfig()
	err := parseConfig(cfg, []byte(`
fontDir: ${PDFPAGE_TEST_FONTS}
compress: false
maxImageDimension: 2000
metricsAddr: ":9100"
`))
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		FontDir:           "/usr/share/pdfpage",
		AssetDir:          "assets",
		Compress:          false,
		MaxImageDimension: 2000,
		Producer:          "pdfpage",
		MetricsAddr:       ":9100",
	}
	if d := cmp.Diff(want, cfg); d != "" {
		t.Errorf("config (-want +got):\n%s", d)
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := []string{
		"fontDirectory: x\n",
		"maxImageDimension: -1\n",
		"compress: [1, 2]\n",
		"producer: a\n---\nproducer: b\n",
	}
	for _, c := range cases {
		if err := parseConfig(defaultConfig(), []byte(c)); err == nil {
			t.Errorf("%q: no error", c)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(defaultConfig(), cfg); d != "" {
		t.Errorf("default config (-want +got):\n%s", d)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "pdfpage.yaml")
	err = os.WriteFile(path, []byte("fontDir: res\nassetDir: /abs\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FontDir != filepath.Join(dir, "res") {
		t.Errorf("fontDir = %q", cfg.FontDir)
	}
	if cfg.AssetDir != "/abs" {
		t.Errorf("assetDir = %q", cfg.AssetDir)
	}
	if !cfg.Compress {
		t.Error("compress default lost")
	}

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("got %v", err)
	}
}

func TestSetupLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		if _, err := setupLogger("debug", format); err != nil {
			t.Errorf("%s: %v", format, err)
		}
	}
	if _, err := setupLogger("loud", "text"); err == nil {
		t.Error("invalid level accepted")
	}
	if _, err := setupLogger("info", "xml"); err == nil {
		t.Error("invalid format accepted")
	}
}

func TestConfigOverrides(t *testing.T) {
	opts := &rootOptions{fontDir: "/fonts", noCompress: true}
	cfg, err := opts.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FontDir != "/fonts" || cfg.Compress {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
