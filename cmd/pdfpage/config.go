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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the command line tool.
type Config struct {
	// FontDir is the directory which holds the fonts/ subdirectory.
	FontDir string `yaml:"fontDir"`

	// AssetDir is the root of the bundled image assets.
	AssetDir string `yaml:"assetDir"`

	Compress          bool   `yaml:"compress"`
	MaxImageDimension int    `yaml:"maxImageDimension"`
	Producer          string `yaml:"producer"`

	// MetricsAddr, if set, is the listen address of the /metrics
	// endpoint.
	MetricsAddr string `yaml:"metricsAddr"`
}

func defaultConfig() *Config {
	return &Config{
		FontDir:  ".",
		AssetDir: "assets",
		Compress: true,
		Producer: "pdfpage",
	}
}

// loadConfig reads the configuration file at path.  An empty path gives the
// default configuration.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = parseConfig(cfg, data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if !filepath.IsAbs(cfg.FontDir) {
		cfg.FontDir = filepath.Join(filepath.Dir(path), cfg.FontDir)
	}
	if !filepath.IsAbs(cfg.AssetDir) {
		cfg.AssetDir = filepath.Join(filepath.Dir(path), cfg.AssetDir)
	}
	return cfg, nil
}

// parseConfig overwrites the fields of cfg which are set in data.
// Environment variables in data are expanded first.
func parseConfig(cfg *Config, data []byte) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("expected a single document")
	}

	if cfg.MaxImageDimension < 0 {
		return fmt.Errorf("invalid maxImageDimension %d", cfg.MaxImageDimension)
	}
	return nil
}
