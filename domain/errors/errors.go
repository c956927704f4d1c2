// Package errors provides domain-specific error types for the directory and its host.
// All error types support error unwrapping via errors.As() and errors.Is().
//
// Two families live here. InvariantError reports a registry-integrity bug and is
// raised with panic (see Violation); it must only be recovered by a top-level crash
// handler. The remaining types are ordinary returned errors.
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

// DetailedError is implemented by error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// InvariantError describes a violated registry precondition: a nil argument,
// an add after transfer, removing an absent item, a duplicate sorted key and
// similar programming errors. It is never returned; it is the panic value
// raised by Violation.
type InvariantError struct {
	Op     string // operation that detected the violation, e.g. "directory.remove"
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

// ToErrorDetail implements DetailedError.
func (e *InvariantError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "invariant", Code: e.Op}
}

// Violation halts the current goroutine with an *InvariantError.
func Violation(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// Check calls Violation when cond is true.
func Check(cond bool, op, format string, args ...any) {
	if cond {
		Violation(op, format, args...)
	}
}

// AsInvariant reports whether a recovered panic value is an *InvariantError.
func AsInvariant(recovered any) (*InvariantError, bool) {
	switch v := recovered.(type) {
	case *InvariantError:
		return v, true
	case error:
		var ie *InvariantError
		if stdErrors.As(v, &ie) {
			return ie, true
		}
	}
	return nil, false
}

// ConfigError represents a configuration or manifest validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// ModuleError represents a failure while loading, merging or unloading a module.
type ModuleError struct {
	Err    error
	Module entities.ModuleID
	Phase  string // "load", "instantiate", "merge", "unload"
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s: %s failed: %v", e.Module, e.Phase, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ModuleError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    "module",
		Code:    e.Phase,
		Details: map[string]any{"module": string(e.Module)},
	}
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "schema"}
}

// WireFormatError represents a guest ABI encoding/decoding error.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "internal", Code: "wire_format"}
}

// Resolution failures reported by an InvokeResolver.
var (
	// ErrNotSubscribed means the caller never subscribed to the requested key.
	ErrNotSubscribed = stdErrors.New("interface not subscribed")
	// ErrUnbound means the caller subscribed but no implementation is available.
	ErrUnbound = stdErrors.New("no implementation bound")
	// ErrSelfInvoke means a module tried to invoke an implementation it publishes.
	ErrSelfInvoke = stdErrors.New("module cannot invoke its own implementation")
)
