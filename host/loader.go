package host

import (
	"fmt"
	"os"

	apptemplate "github.com/reglet-dev/reglet-idb/application/template"
	"github.com/reglet-dev/reglet-idb/application/validation"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
	"github.com/reglet-dev/reglet-idb/infrastructure/parser"
)

type loaderConfig struct {
	templateEngine  ports.TemplateEngine
	parser          ports.ManifestParser
	validator       ports.ManifestValidator
	strictTemplates bool
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		validator:       validation.NewManifestValidator(),
		strictTemplates: true,
	}
}

// Loader runs the manifest pipeline: template rendering, parsing, validation.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser forces a manifest parser. Without it LoadManifest parses YAML
// and LoadManifestFile picks a parser from the file extension.
func WithParser(p ports.ManifestParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithTemplateEngine sets a template engine.
func WithTemplateEngine(t ports.TemplateEngine) LoaderOption {
	return func(c *loaderConfig) {
		c.templateEngine = t
	}
}

// WithValidator replaces the manifest validator.
func WithValidator(v ports.ManifestValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// WithStrictTemplates enables/disables failing on missing template keys.
func WithStrictTemplates(enabled bool) LoaderOption {
	return func(c *loaderConfig) {
		c.strictTemplates = enabled
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.templateEngine == nil {
		cfg.templateEngine = apptemplate.NewGoTemplateEngine(apptemplate.WithStrict(cfg.strictTemplates))
	}
	return &Loader{config: cfg}
}

// LoadManifest renders, parses and validates a manifest document.
func (l *Loader) LoadManifest(raw []byte, config map[string]any) (*entities.Manifest, error) {
	p := l.config.parser
	if p == nil {
		p = parser.NewYamlManifestParser()
	}
	return l.load(raw, config, p)
}

// LoadManifestFile reads path and loads it as LoadManifest does.
func (l *Loader) LoadManifestFile(path string, config map[string]any) (*entities.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	p := l.config.parser
	if p == nil {
		if p, err = parser.ForPath(path); err != nil {
			return nil, err
		}
	}

	m, err := l.load(raw, config, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (l *Loader) load(raw []byte, config map[string]any, p ports.ManifestParser) (*entities.Manifest, error) {
	data, err := l.config.templateEngine.Render(raw, config)
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest: %w", err)
	}

	manifest, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if l.config.validator != nil {
		res, err := l.config.validator.Validate(manifest)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if err := validation.Err(res); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", manifest.Name, err)
		}
	}
	return manifest, nil
}
