package idb

import (
	"sync/atomic"

	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/domain/entities"
)

// Publication is a registered implementation. Closing it withdraws the
// implementation; if it was active, the next oldest one takes over.
type Publication struct {
	scope  *Scope
	impl   *directory.Implementation
	closed atomic.Bool
}

// Key returns the key the implementation is published under.
func (p *Publication) Key() entities.InterfaceKey {
	return p.impl.Key()
}

// Instance returns the published instance.
func (p *Publication) Instance() any {
	return p.impl.Instance()
}

// Close withdraws the implementation. It is idempotent.
func (p *Publication) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.scope.withdraw(p.impl)
}
