package directory

import (
	"sync/atomic"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// Item is stored in a Directory: either an *Implementation or a *Reference.
type Item interface {
	Key() entities.InterfaceKey
	Module() entities.ModuleID
	item()
}

// Implementation is one concrete instance published under a key.
type Implementation struct {
	key      entities.InterfaceKey
	class    string
	instance any
	module   entities.ModuleID
}

// NewImplementation describes instance published under key by module.
// class is the implementation's class name, reported in snapshots.
func NewImplementation(key entities.InterfaceKey, class string, instance any, module entities.ModuleID) *Implementation {
	errors.Check(key.IsZero(), "directory.implementation", "incomplete key %q", key)
	errors.Check(instance == nil, "directory.implementation", "nil instance for %s", key)
	return &Implementation{key: key, class: class, instance: instance, module: module}
}

// Key returns the key the implementation is published under.
func (i *Implementation) Key() entities.InterfaceKey { return i.key }

// Class returns the implementation's class name.
func (i *Implementation) Class() string { return i.class }

// Instance returns the published instance.
func (i *Implementation) Instance() any { return i.instance }

// Module returns the publishing module.
func (i *Implementation) Module() entities.ModuleID { return i.module }

func (*Implementation) item() {}

// Reference is a live binding to whatever implementation is active for a key.
type Reference struct {
	key    entities.InterfaceKey
	module entities.ModuleID
	bound  atomic.Pointer[Implementation]
}

// NewReference describes a reference to key held by module.
func NewReference(key entities.InterfaceKey, module entities.ModuleID) *Reference {
	errors.Check(key.IsZero(), "directory.reference", "incomplete key %q", key)
	return &Reference{key: key, module: module}
}

// Key returns the referenced key.
func (r *Reference) Key() entities.InterfaceKey { return r.key }

// Module returns the module holding the reference.
func (r *Reference) Module() entities.ModuleID { return r.module }

// Current returns the instance the reference is bound to.
func (r *Reference) Current() (any, bool) {
	impl := r.bound.Load()
	if impl == nil {
		return nil, false
	}
	return impl.instance, true
}

// Implementation returns the implementation the reference is bound to, or nil.
func (r *Reference) Implementation() *Implementation {
	return r.bound.Load()
}

func (r *Reference) bind(impl *Implementation) {
	r.bound.Store(impl)
}

func (*Reference) item() {}
