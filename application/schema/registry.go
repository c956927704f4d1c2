package schema

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/reglet-dev/reglet-idb/domain/ports"
)

type registryConfig struct {
	strictMode bool
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{strictMode: true}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables failing on duplicate registrations.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry implements ports.SchemaRegistry.
type Registry struct {
	schemas map[string]string
	config  registryConfig
	mu      sync.RWMutex
}

// NewRegistry creates a new Registry with the given options.
func NewRegistry(opts ...RegistryOption) ports.SchemaRegistry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg, schemas: make(map[string]string)}
}

// Register generates and stores the schema of model under name.
func (r *Registry) Register(name string, model any) error {
	data, err := GenerateSchema(model)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[name]; exists && r.config.strictMode {
		return fmt.Errorf("schema %q already registered", name)
	}
	r.schemas[name] = string(data)
	return nil
}

// GetSchema retrieves the JSON Schema registered under name.
func (r *Registry) GetSchema(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// List returns all registered schema names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "nil"
	}
	return t.Name()
}
