package hostfuncs

import (
	"maps"

	"github.com/reglet-dev/reglet-idb/domain/ports"
)

// HostFuncBundle is a pre-configured set of related host functions.
type HostFuncBundle interface {
	// Handlers returns a map of handler names to ByteHandler functions.
	Handlers() map[string]ByteHandler
}

type staticBundle struct {
	handlers map[string]ByteHandler
}

func (b *staticBundle) Handlers() map[string]ByteHandler {
	return maps.Clone(b.handlers)
}

// DirectoryBundle returns the directory host functions: idb_invoke.
func DirectoryBundle(resolver ports.InvokeResolver) HostFuncBundle {
	return &staticBundle{
		handlers: map[string]ByteHandler{
			InvokeFunction: NewInvokeHandler(resolver),
		},
	}
}

// WithBundle registers all handlers from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle.Handlers() {
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
