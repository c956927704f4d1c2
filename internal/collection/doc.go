// Package collection provides the growable pointer collections the directory
// and its consumers are built on.
//
// Array keeps non-nil element pointers in a slice that grows from 4 slots by
// doubling. It comes in three flavours selected at construction: unordered
// (removal swaps the last element into the hole), ordered (removal shifts, so
// insertion order is preserved and Pop yields the oldest element) and owning
// (Clear and Reset hand every element to a destroy function). Sorted keeps an
// ordered Array in ascending comparator order and finds elements by key with
// a binary search.
//
// Violated preconditions such as a nil element or an out of range index are
// programming errors and panic with an *errors.InvariantError.
package collection
