// Package log builds the host's slog logger and decodes log records that
// guest modules send over the log_message host function.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the slog handler used for output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// LoggerOption configures New.
type LoggerOption func(*loggerConfig)

type loggerConfig struct {
	writer    io.Writer
	format    Format
	level     slog.Level
	addSource bool
}

func defaultLoggerConfig() loggerConfig {
	return loggerConfig{
		writer: os.Stderr,
		format: FormatText,
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) LoggerOption {
	return func(c *loggerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) LoggerOption {
	return func(c *loggerConfig) {
		c.addSource = enabled
	}
}

// WithFormat selects text or JSON output.
func WithFormat(format Format) LoggerOption {
	return func(c *loggerConfig) {
		c.format = format
	}
}

// WithWriter redirects output (default os.Stderr).
func WithWriter(w io.Writer) LoggerOption {
	return func(c *loggerConfig) {
		c.writer = w
	}
}

// New creates a host logger.
func New(opts ...LoggerOption) *slog.Logger {
	cfg := defaultLoggerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	if cfg.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(cfg.writer, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(cfg.writer, handlerOpts))
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
