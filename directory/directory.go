package directory

import (
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/internal/collection"
	"github.com/reglet-dev/reglet-idb/manager"
)

// Directory is the Record behind the interface directory kind.
type Directory struct {
	manager.Links[Item]
	entries *collection.Sorted[entry, entities.InterfaceKey]
}

var _ manager.Record[Item] = (*Directory)(nil)

// New returns an empty Directory.
func New() *Directory {
	return &Directory{
		entries: collection.NewSorted(compareEntries, findEntry, collection.Owning((*entry).release)),
	}
}

// Add stores an implementation or a reference.
func (d *Directory) Add(it Item) {
	switch v := it.(type) {
	case *Implementation:
		errors.Check(v == nil, "directory.add", "nil implementation")
		d.entry(v.key).addImplementation(v)
	case *Reference:
		errors.Check(v == nil, "directory.add", "nil reference")
		d.entry(v.key).addReference(v)
	default:
		errors.Violation("directory.add", "unsupported item %T", it)
	}
}

// Remove drops an implementation or a reference. Withdrawing the active
// implementation fails over to the oldest remaining one. Removing an item the
// directory does not hold is a violation.
func (d *Directory) Remove(it Item) {
	switch v := it.(type) {
	case *Implementation:
		errors.Check(v == nil, "directory.remove", "nil implementation")
		e := d.existing(v.key)
		errors.Check(!e.removeImplementation(v), "directory.remove", "implementation %s of %s not registered", v.class, v.key)
	case *Reference:
		errors.Check(v == nil, "directory.remove", "nil reference")
		e := d.existing(v.key)
		errors.Check(!e.removeReference(v), "directory.remove", "reference to %s held by %s not registered", v.key, v.module)
	default:
		errors.Violation("directory.remove", "unsupported item %T", it)
	}
}

// TransferAll moves every reference and implementation into target, which
// must be a different *Directory. Entries are processed from last to first;
// references are unbound, then moved ahead of the implementations so that they
// rebind through target's normal add path.
func (d *Directory) TransferAll(target manager.Record[Item]) {
	dst, ok := target.(*Directory)
	errors.Check(!ok || dst == nil, "directory.transfer", "target %T is not a directory", target)
	errors.Check(dst == d, "directory.transfer", "transfer into itself")

	for d.entries.Len() > 0 {
		e := d.entries.RemoveAt(d.entries.Len() - 1)
		e.unbindAll()
		e.active = nil

		for ref, ok := e.refs.Pop(); ok; ref, ok = e.refs.Pop() {
			dst.entry(ref.key).addReference(ref)
		}
		for impl, ok := e.impls.Pop(); ok; impl, ok = e.impls.Pop() {
			dst.entry(impl.key).addImplementation(impl)
		}
	}
}

// Destroy tears the directory down. Every entry must already be empty.
func (d *Directory) Destroy() {
	for _, e := range d.entries.All() {
		errors.Check(!e.empty(), "directory.destroy", "%s still holds %d implementations and %d references",
			e.key, e.impls.Len(), e.refs.Len())
	}
	d.entries.Reset()
}

// Lookup returns the instance active for key.
func (d *Directory) Lookup(key entities.InterfaceKey) (any, bool) {
	e, ok := d.entries.Find(key)
	if !ok || e.active == nil {
		return nil, false
	}
	return e.active.instance, true
}

// Active returns the implementation active for key, or nil.
func (d *Directory) Active(key entities.InterfaceKey) *Implementation {
	e, ok := d.entries.Find(key)
	if !ok {
		return nil
	}
	return e.active
}

// Len returns the number of entries, including emptied ones.
func (d *Directory) Len() int {
	return d.entries.Len()
}

// Snapshot describes every entry in key order. It is a diagnostic view.
func (d *Directory) Snapshot() []entities.EntrySnapshot {
	out := make([]entities.EntrySnapshot, 0, d.entries.Len())
	for _, e := range d.entries.All() {
		out = append(out, e.snapshot())
	}
	return out
}

// entry finds or creates the entry for key.
func (d *Directory) entry(key entities.InterfaceKey) *entry {
	if e, ok := d.entries.Find(key); ok {
		return e
	}
	e := newEntry(key)
	d.entries.Add(e)
	return e
}

func (d *Directory) existing(key entities.InterfaceKey) *entry {
	e, ok := d.entries.Find(key)
	errors.Check(!ok, "directory.remove", "no entry for %s", key)
	return e
}
