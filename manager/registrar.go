package manager

import (
	"github.com/reglet-dev/reglet-idb/domain/entities"
)

// Registrar is the per-module, per-kind bookkeeping: the record the module's
// items currently live in, how many of them there are, and whether the module
// has been merged into another.
type Registrar[I any] struct {
	module      entities.ModuleID
	record      Record[I]
	count       int
	transferred bool
	linked      bool
	next        *Registrar[I]
}

// Module returns the module the registrar belongs to.
func (r *Registrar[I]) Module() entities.ModuleID {
	return r.module
}

// Count returns the number of items the module currently has in the record.
func (r *Registrar[I]) Count() int {
	return r.count
}

// Transferred reports whether the module has been merged into another.
func (r *Registrar[I]) Transferred() bool {
	return r.transferred
}

// Attached reports whether the registrar is in its record's reference list.
func (r *Registrar[I]) Attached() bool {
	return r.linked
}

// live returns the record unless it has been destroyed behind our back.
func (r *Registrar[I]) live() Record[I] {
	if r.record != nil && r.record.links().destroyed {
		r.record, r.linked = nil, false
	}
	return r.record
}
