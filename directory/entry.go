package directory

import (
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/internal/collection"
)

// entry holds everything published or referenced under one key.
type entry struct {
	key    entities.InterfaceKey
	impls  *collection.Array[Implementation] // publication order, oldest first
	refs   *collection.Array[Reference]
	active *Implementation
}

func newEntry(key entities.InterfaceKey) *entry {
	return &entry{
		key:   key,
		impls: collection.NewQueue[Implementation](),
		refs:  collection.New[Reference](),
	}
}

func compareEntries(a, b *entry) int {
	return a.key.Compare(b.key)
}

func findEntry(key entities.InterfaceKey, e *entry) int {
	return key.Compare(e.key)
}

func (e *entry) empty() bool {
	return e.impls.Len() == 0 && e.refs.Len() == 0
}

func (e *entry) addImplementation(impl *Implementation) {
	e.impls.Add(impl)
	if e.active == nil {
		e.activate(impl)
	}
}

func (e *entry) removeImplementation(impl *Implementation) bool {
	if !e.impls.Contains(impl) {
		return false
	}
	if impl == e.active {
		e.unbindAll()
		e.active = nil
	}
	e.impls.Remove(impl)
	if e.active == nil && e.impls.Len() > 0 {
		e.activate(e.impls.Get(0))
	}
	return true
}

func (e *entry) addReference(ref *Reference) {
	e.refs.Add(ref)
	ref.bind(e.active)
}

func (e *entry) removeReference(ref *Reference) bool {
	if _, ok := e.refs.Remove(ref); !ok {
		return false
	}
	ref.bind(nil)
	return true
}

func (e *entry) activate(impl *Implementation) {
	if impl == e.active {
		return
	}
	e.active = impl
	for _, ref := range e.refs.All() {
		ref.bind(impl)
	}
}

func (e *entry) unbindAll() {
	for _, ref := range e.refs.All() {
		ref.bind(nil)
	}
}

func (e *entry) snapshot() entities.EntrySnapshot {
	s := entities.EntrySnapshot{
		Key:             e.key,
		Implementations: make([]entities.ImplementationInfo, 0, e.impls.Len()),
		References:      e.refs.Len(),
	}
	for _, impl := range e.impls.All() {
		s.Implementations = append(s.Implementations, entities.ImplementationInfo{Class: impl.class, Module: impl.module})
	}
	if e.active != nil {
		s.Active = &entities.ImplementationInfo{Class: e.active.class, Module: e.active.module}
	}
	return s
}

// release drops the entry's contents when its directory is torn down.
func (e *entry) release() {
	e.unbindAll()
	e.active = nil
	e.impls.Reset()
	e.refs.Reset()
}
