package ports

import (
	"context"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

// Invoker is an implementation that can be called with an opaque JSON
// payload. Every guest export published into the directory is one; host code
// may publish its own so guests can reach it.
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) ([]byte, error)
}

// InvokeResolver resolves the implementation a module reaches under key.
// Only keys the caller subscribed to resolve.
type InvokeResolver interface {
	Resolve(caller entities.ModuleID, key entities.InterfaceKey) (Invoker, error)
}
