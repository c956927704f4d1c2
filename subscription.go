package idb

import (
	"sync/atomic"

	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// Subscription is a live reference to whatever implementation is active for
// a key. T is the interface the caller expects the implementation to satisfy.
type Subscription[T any] struct {
	scope  *Scope
	ref    *directory.Reference
	closed atomic.Bool
}

// Subscribe registers a reference to key on behalf of scope's module.
func Subscribe[T any](scope *Scope, key entities.InterfaceKey) *Subscription[T] {
	errors.Check(scope == nil, "idb.subscribe", "nil scope")
	sub := &Subscription[T]{scope: scope}
	sub.ref = scope.subscribe(key, sub)
	return sub
}

// Key returns the subscribed key.
func (s *Subscription[T]) Key() entities.InterfaceKey {
	return s.ref.Key()
}

// Get resolves the implementation currently active for the key. It reports
// false when nothing is published under the key or the subscription is closed.
// An active implementation that does not satisfy T is a violation.
func (s *Subscription[T]) Get() (T, bool) {
	var zero T
	inst, ok := s.ref.Current()
	if !ok {
		return zero, false
	}
	v, ok := inst.(T)
	errors.Check(!ok, "idb.get", "%s is bound to %T which does not satisfy %T", s.ref.Key(), inst, (*T)(nil))
	return v, true
}

// MustGet is Get for keys that must be bound. An unbound key is a violation.
func (s *Subscription[T]) MustGet() T {
	v, ok := s.Get()
	errors.Check(!ok, "idb.get", "%s is not bound", s.ref.Key())
	return v
}

// Class returns the class name of the bound implementation, or "".
func (s *Subscription[T]) Class() string {
	if impl := s.ref.Implementation(); impl != nil {
		return impl.Class()
	}
	return ""
}

// Close unbinds and drops the subscription. It is idempotent.
func (s *Subscription[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.scope.withdraw(s.ref)
}
