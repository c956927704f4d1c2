// Package template renders module manifests as text/template documents so a
// manifest can refer to per-module configuration: {{ .config.greeting }}.
package template

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	"github.com/reglet-dev/reglet-idb/domain/ports"
)

type templateConfig struct {
	funcs  template.FuncMap
	strict bool
}

func defaultTemplateConfig() templateConfig {
	return templateConfig{
		strict: true,
		funcs: template.FuncMap{
			"default": defaultValue,
			"quote":   quote,
		},
	}
}

// TemplateOption configures a GoTemplateEngine.
type TemplateOption func(*templateConfig)

// WithStrict enables/disables strict mode for missing keys.
// When enabled (default), rendering fails if a referenced key is missing.
func WithStrict(enabled bool) TemplateOption {
	return func(c *templateConfig) {
		c.strict = enabled
	}
}

// WithFunc adds a template function.
func WithFunc(name string, fn any) TemplateOption {
	return func(c *templateConfig) {
		c.funcs[name] = fn
	}
}

// GoTemplateEngine implements TemplateEngine using text/template.
type GoTemplateEngine struct {
	config templateConfig
}

// NewGoTemplateEngine creates a new GoTemplateEngine.
func NewGoTemplateEngine(opts ...TemplateOption) ports.TemplateEngine {
	cfg := defaultTemplateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GoTemplateEngine{config: cfg}
}

// Render executes raw with config available as .config.
func (e *GoTemplateEngine) Render(raw []byte, config map[string]any) ([]byte, error) {
	tmpl := template.New("manifest").Funcs(e.config.funcs)
	if e.config.strict {
		tmpl = tmpl.Option("missingkey=error")
	}

	tmpl, err := tmpl.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest template: %w", err)
	}

	if config == nil {
		config = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{"config": config}); err != nil {
		return nil, fmt.Errorf("failed to execute manifest template: %w", err)
	}
	return buf.Bytes(), nil
}

// defaultValue returns fallback when value is nil or the empty string.
// Used as {{ default "x" .config.key }}; the missing key must be reached via
// index in strict mode.
func defaultValue(fallback, value any) any {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && s == "" {
		return fallback
	}
	return value
}

// quote renders a value as a double-quoted string, safe inside YAML and HCL.
func quote(value any) string {
	return strconv.Quote(fmt.Sprint(value))
}
