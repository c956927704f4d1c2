// Package config loads the idbhost configuration file.
//
//	log:
//	  level: info
//	  format: text
//	frames: 120
//	modules:
//	  - manifest: ./greeter.yaml
//	    wasm: ./greeter.wasm
//	    config: {greeting: hello}
//
// Relative module paths resolve against the directory holding the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/reglet-idb/application/validation"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	idblog "github.com/reglet-dev/reglet-idb/log"
)

// DefaultFrames is the number of simulation frames run when the file omits it.
const DefaultFrames = 120

// HostConfig is the root of the configuration file.
type HostConfig struct {
	Log     LogConfig      `yaml:"log" json:"log"`
	Modules []ModuleConfig `yaml:"modules,omitempty" json:"modules,omitempty" validate:"dive"`
	Frames  int            `yaml:"frames" json:"frames" validate:"gte=0"`
}

// LogConfig configures the host logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=text json" jsonschema:"enum=text,enum=json"`
	Source bool   `yaml:"source,omitempty" json:"source,omitempty"`
}

// ModuleConfig names one WASM module to load.
type ModuleConfig struct {
	Config   map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
	Manifest string         `yaml:"manifest" json:"manifest" validate:"required"`
	Wasm     string         `yaml:"wasm" json:"wasm" validate:"required"`
}

// Default returns the configuration used when no file is given.
func Default() *HostConfig {
	return &HostConfig{Frames: DefaultFrames}
}

// Load reads, validates and path-resolves the file at path.
func Load(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes and validates a configuration document. Paths are left as written.
func Parse(data []byte) (*HostConfig, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &domainerrors.ConfigError{Err: err}
	}

	res, err := validation.ValidateStruct(cfg)
	if err != nil {
		return nil, err
	}
	if err := validation.Err(res); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *HostConfig) resolve(dir string) {
	for i := range c.Modules {
		m := &c.Modules[i]
		if !filepath.IsAbs(m.Manifest) {
			m.Manifest = filepath.Join(dir, m.Manifest)
		}
		if !filepath.IsAbs(m.Wasm) {
			m.Wasm = filepath.Join(dir, m.Wasm)
		}
	}
}

// Logger builds the host logger described by the log section.
func (c LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := idblog.ParseLevel(c.Level)
	if err != nil {
		return nil, &domainerrors.ConfigError{Field: "log.level", Err: err}
	}
	opts := []idblog.LoggerOption{
		idblog.WithLevel(level),
		idblog.WithSource(c.Source),
		idblog.WithWriter(w),
	}
	if c.Format != "" {
		opts = append(opts, idblog.WithFormat(idblog.Format(c.Format)))
	}
	return idblog.New(opts...), nil
}
