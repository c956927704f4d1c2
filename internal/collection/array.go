package collection

import (
	"iter"

	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// initialCapacity is the first allocation made by an empty collection.
const initialCapacity = 4

// Option configures an Array or Sorted collection.
type Option[T any] func(*config[T])

type config[T any] struct {
	destroy func(*T)
}

// Owning makes the collection responsible for its elements: Clear, Reset and
// TakeFrom pass every element they drop to destroy.
func Owning[T any](destroy func(*T)) Option[T] {
	return func(c *config[T]) {
		c.destroy = destroy
	}
}

// Array is a growable collection of non-nil element pointers.
// The zero value is an empty, unordered, non-owning collection.
type Array[T any] struct {
	items   []*T
	ordered bool
	destroy func(*T)
}

// New returns an unordered Array. Removing an element moves the last element
// into its slot.
func New[T any](opts ...Option[T]) *Array[T] {
	return newArray(false, opts)
}

// NewQueue returns an ordered Array. Removing an element shifts the later
// ones down, so elements stay in insertion order and Pop returns the oldest.
func NewQueue[T any](opts ...Option[T]) *Array[T] {
	return newArray(true, opts)
}

func newArray[T any](ordered bool, opts []Option[T]) *Array[T] {
	var cfg config[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Array[T]{ordered: ordered, destroy: cfg.destroy}
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {
	return len(a.items)
}

// Cap returns the number of slots currently allocated.
func (a *Array[T]) Cap() int {
	return cap(a.items)
}

// Ordered reports whether removal preserves insertion order.
func (a *Array[T]) Ordered() bool {
	return a.ordered
}

// Owning reports whether the collection destroys the elements it drops.
func (a *Array[T]) Owning() bool {
	return a.destroy != nil
}

// Add appends item.
func (a *Array[T]) Add(item *T) {
	errors.Check(item == nil, "collection.add", "nil element")
	a.grow()
	a.items = append(a.items, item)
}

// Get returns the element at index i.
func (a *Array[T]) Get(i int) *T {
	a.checkIndex("collection.get", i)
	return a.items[i]
}

// IndexOf returns the position of item, or -1.
func (a *Array[T]) IndexOf(item *T) int {
	for i, it := range a.items {
		if it == item {
			return i
		}
	}
	return -1
}

// Contains reports whether item is in the collection.
func (a *Array[T]) Contains(item *T) bool {
	return a.IndexOf(item) >= 0
}

// RemoveAt removes and returns the element at index i. The element is never
// destroyed, even by an owning collection.
func (a *Array[T]) RemoveAt(i int) *T {
	a.checkIndex("collection.remove", i)
	item := a.items[i]
	last := len(a.items) - 1

	if a.ordered {
		copy(a.items[i:], a.items[i+1:])
	} else {
		a.items[i] = a.items[last]
	}
	a.items[last] = nil
	a.items = a.items[:last]
	return item
}

// Remove removes item and reports whether it was present.
func (a *Array[T]) Remove(item *T) (*T, bool) {
	errors.Check(item == nil, "collection.remove", "nil element")
	i := a.IndexOf(item)
	if i < 0 {
		return nil, false
	}
	return a.RemoveAt(i), true
}

// Pop removes and returns the first element. On an ordered collection this
// is the oldest one.
func (a *Array[T]) Pop() (*T, bool) {
	if len(a.items) == 0 {
		return nil, false
	}
	return a.RemoveAt(0), true
}

// Clear drops every element, destroying them if the collection is owning.
// The allocated storage is kept.
func (a *Array[T]) Clear() {
	items := a.items
	a.items = a.items[:0]
	a.drop(items)
	clear(items)
}

// Reset drops every element like Clear and releases the storage.
func (a *Array[T]) Reset() {
	items := a.items
	a.items = nil
	a.drop(items)
}

// TakeFrom replaces the contents with the elements of other, leaving other
// empty. The receiver's previous elements are dropped as in Reset.
func (a *Array[T]) TakeFrom(other *Array[T]) {
	errors.Check(other == nil, "collection.take", "nil source")
	if other == a {
		return
	}
	a.Reset()
	a.items = other.items
	other.items = nil
}

// All iterates over the elements in storage order.
func (a *Array[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i, it := range a.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Items returns a copy of the element pointers.
func (a *Array[T]) Items() []*T {
	out := make([]*T, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Array[T]) insertAt(i int, item *T) {
	errors.Check(item == nil, "collection.add", "nil element")
	errors.Check(i < 0 || i > len(a.items), "collection.add", "insert position %d out of range [0,%d]", i, len(a.items))
	a.grow()
	a.items = append(a.items, nil)
	copy(a.items[i+1:], a.items[i:])
	a.items[i] = item
}

// grow makes room for one more element: 0 -> 4 -> 8 -> 16 ...
func (a *Array[T]) grow() {
	if len(a.items) < cap(a.items) {
		return
	}
	n := initialCapacity
	if c := cap(a.items); c > 0 {
		n = c * 2
	}
	items := make([]*T, len(a.items), n)
	copy(items, a.items)
	a.items = items
}

func (a *Array[T]) drop(items []*T) {
	if a.destroy == nil {
		return
	}
	for _, it := range items {
		a.destroy(it)
	}
}

func (a *Array[T]) checkIndex(op string, i int) {
	errors.Check(i < 0 || i >= len(a.items), op, "index %d out of range [0,%d)", i, len(a.items))
}
