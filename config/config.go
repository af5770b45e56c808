// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format int

// Supported formats.
const (
	FormatYAML Format = iota + 1
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Default surface size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// ErrUnknownFormat is returned for files whose extension names no
// supported format.
var ErrUnknownFormat = errors.New("config: unknown format")

// File is a host configuration.
type File struct {
	// Effects is a directory of effect sources. Empty means the bundled
	// effects only.
	Effects string `yaml:"effects,omitempty" toml:"effects,omitempty"`

	// Pattern selects effect files in Effects. Empty means *.wgsl.
	Pattern string `yaml:"pattern,omitempty" toml:"pattern,omitempty"`

	// Background is an image drawn under all layers.
	Background string `yaml:"background,omitempty" toml:"background,omitempty"`

	// Width and Height are the surface size in pixels.
	Width  int `yaml:"width,omitempty" toml:"width,omitempty"`
	Height int `yaml:"height,omitempty" toml:"height,omitempty"`

	// Clear is the surface colour without a background, e.g. "#000000".
	Clear string `yaml:"clear,omitempty" toml:"clear,omitempty"`

	// Platform is the host platform version effects are gated against.
	Platform string `yaml:"platform,omitempty" toml:"platform,omitempty"`

	Layers []Layer `yaml:"layers,omitempty" toml:"layers,omitempty"`
}

// Layer is one entry of the layer stack.
type Layer struct {
	Shader string `yaml:"shader" toml:"shader"`
	Order  int    `yaml:"order,omitempty" toml:"order,omitempty"`

	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty"`

	// Opacity defaults to 1.
	Opacity *float64 `yaml:"opacity,omitempty" toml:"opacity,omitempty"`

	Depth float64 `yaml:"depth,omitempty" toml:"depth,omitempty"`

	// Params maps parameter ids to scalars, strings or number lists.
	Params map[string]any `yaml:"params,omitempty" toml:"params,omitempty"`
}

// FormatOf returns the format implied by a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads and validates a configuration file. Relative Effects and
// Background paths are resolved against the file's directory.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	f.Effects = resolve(dir, f.Effects)
	f.Background = resolve(dir, f.Background)
	return f, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Parse decodes a configuration. Unknown keys are errors. Missing sizes
// take the defaults.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if f.Width == 0 {
		f.Width = DefaultWidth
	}
	if f.Height == 0 {
		f.Height = DefaultHeight
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file for values no renderer can use.
func (f *File) Validate() error {
	var errs []error
	if f.Width < 0 || f.Height < 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", f.Width, f.Height))
	}
	for i, l := range f.Layers {
		if l.Shader == "" {
			errs = append(errs, fmt.Errorf("layer %d: missing shader", i))
		}
		if l.Opacity != nil && (*l.Opacity < 0 || *l.Opacity > 1) {
			errs = append(errs, fmt.Errorf("layer %d (%s): opacity %v outside [0, 1]", i, l.Shader, *l.Opacity))
		}
	}
	return errors.Join(errs...)
}

// Encode writes the file in the given format.
func (f *File) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("config: yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return fmt.Errorf("config: toml: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}
