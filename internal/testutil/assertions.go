// Package testutil provides common test utilities and assertions for registry tests
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-idb/domain/errors"
)

// Resolver is anything that resolves to a current binding, such as an
// idb.Subscription.
type Resolver[T any] interface {
	Get() (T, bool)
}

// RequireViolation runs f and requires it to panic with an *errors.InvariantError.
// When op is non-empty the violation must have been raised by that operation.
func RequireViolation(t *testing.T, op string, f func(), msgAndArgs ...interface{}) *errors.InvariantError {
	t.Helper()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		f()
	}()

	require.NotNil(t, recovered, msgAndArgs...)
	ie, ok := errors.AsInvariant(recovered)
	require.True(t, ok, "panic value %v is not an invariant violation", recovered)
	if op != "" {
		assert.Equal(t, op, ie.Op, msgAndArgs...)
	}
	return ie
}

// AssertBound asserts that r currently resolves to want.
func AssertBound[T comparable](t *testing.T, r Resolver[T], want T, msgAndArgs ...interface{}) {
	t.Helper()
	got, ok := r.Get()
	if assert.True(t, ok, msgAndArgs...) {
		assert.Equal(t, want, got, msgAndArgs...)
	}
}

// AssertUnbound asserts that r currently resolves to nothing.
func AssertUnbound[T any](t *testing.T, r Resolver[T], msgAndArgs ...interface{}) {
	t.Helper()
	_, ok := r.Get()
	assert.False(t, ok, msgAndArgs...)
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}
