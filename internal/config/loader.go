// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are not YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Loader builds an AppConfig from defaults, an optional file and the environment.
type Loader struct {
	path string
}

// NewLoader creates a loader. An empty path means ENV-only configuration.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path is the watched config file, if any.
func (l *Loader) Path() string { return l.path }

// Load applies defaults, then the file, then ENV overrides, and validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	if l.path != "" {
		if err := loadFile(l.path, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("load %s: %w", l.path, err)
		}
	}
	mergeEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Keys absent from the file keep their current values.
func loadFile(path string, cfg *AppConfig) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}
