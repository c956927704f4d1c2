package collection

import (
	"iter"

	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// Sorted keeps elements in ascending order under compare and looks them up
// by a key of type K. Keys are unique: adding an element that compares equal
// to one already present is a violation.
type Sorted[T, K any] struct {
	arr     *Array[T]
	compare func(a, b *T) int
	find    func(key K, item *T) int
}

// NewSorted returns an empty Sorted collection. compare orders two elements;
// find compares a key against an element with the same sign convention.
func NewSorted[T, K any](compare func(a, b *T) int, find func(key K, item *T) int, opts ...Option[T]) *Sorted[T, K] {
	errors.Check(compare == nil || find == nil, "collection.sorted", "nil comparator")
	return &Sorted[T, K]{
		arr:     newArray(true, opts),
		compare: compare,
		find:    find,
	}
}

// Len returns the number of elements.
func (s *Sorted[T, K]) Len() int {
	return s.arr.Len()
}

// Get returns the element at index i.
func (s *Sorted[T, K]) Get(i int) *T {
	return s.arr.Get(i)
}

// Add inserts item at its sorted position and returns that position.
func (s *Sorted[T, K]) Add(item *T) int {
	errors.Check(item == nil, "collection.sorted.add", "nil element")

	lo, hi := 0, s.arr.Len()
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		c := s.compare(item, s.arr.items[mid])
		switch {
		case c == 0:
			errors.Violation("collection.sorted.add", "duplicate key at index %d", mid)
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	s.arr.insertAt(lo, item)
	return lo
}

// Index returns the position of the element matching key.
func (s *Sorted[T, K]) Index(key K) (int, bool) {
	lo, hi := 0, s.arr.Len()
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		c := s.find(key, s.arr.items[mid])
		switch {
		case c == 0:
			return mid, true
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return lo, false
}

// Find returns the element matching key.
func (s *Sorted[T, K]) Find(key K) (*T, bool) {
	i, ok := s.Index(key)
	if !ok {
		return nil, false
	}
	return s.arr.items[i], true
}

// RemoveKey removes the element matching key without destroying it.
func (s *Sorted[T, K]) RemoveKey(key K) (*T, bool) {
	i, ok := s.Index(key)
	if !ok {
		return nil, false
	}
	return s.arr.RemoveAt(i), true
}

// RemoveAt removes the element at index i without destroying it.
func (s *Sorted[T, K]) RemoveAt(i int) *T {
	return s.arr.RemoveAt(i)
}

// Clear drops every element, destroying them if the collection is owning.
func (s *Sorted[T, K]) Clear() {
	s.arr.Clear()
}

// Reset drops every element and releases the storage.
func (s *Sorted[T, K]) Reset() {
	s.arr.Reset()
}

// All iterates over the elements in ascending order.
func (s *Sorted[T, K]) All() iter.Seq2[int, *T] {
	return s.arr.All()
}

// Backward iterates over the elements from last to first.
func (s *Sorted[T, K]) Backward() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := s.arr.Len() - 1; i >= 0; i-- {
			if !yield(i, s.arr.items[i]) {
				return
			}
		}
	}
}
