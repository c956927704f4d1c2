package hostfuncs

import (
	"context"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

// HostContext wraps a standard context.Context with host function-specific helpers.
type HostContext interface {
	context.Context

	// FunctionName returns the name of the host function being invoked.
	FunctionName() string

	// Caller returns the module that issued the call, if known.
	Caller() (entities.ModuleID, bool)

	// SetValue stores a request-scoped value. Unlike context.WithValue,
	// this mutates the existing HostContext.
	SetValue(key, value any)

	// GetValue retrieves a request-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)
}

type hostContext struct {
	context.Context
	values   map[any]any
	funcName string
}

// NewHostContext creates a new HostContext wrapping the given context.
func NewHostContext(ctx context.Context, funcName string) HostContext {
	return &hostContext{
		Context:  ctx,
		funcName: funcName,
		values:   make(map[any]any),
	}
}

func (c *hostContext) FunctionName() string {
	return c.funcName
}

func (c *hostContext) Caller() (entities.ModuleID, bool) {
	return CallerFrom(c.Context)
}

func (c *hostContext) SetValue(key, value any) {
	c.values[key] = value
}

func (c *hostContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// HostContextFrom returns ctx itself when it already is a HostContext,
// otherwise a new HostContext wrapping it.
func HostContextFrom(ctx context.Context, funcName string) HostContext {
	if hc, ok := ctx.(HostContext); ok {
		return hc
	}
	return NewHostContext(ctx, funcName)
}

type callerKey struct{}

// WithCaller records the calling module on the context.
func WithCaller(ctx context.Context, module entities.ModuleID) context.Context {
	return context.WithValue(ctx, callerKey{}, module)
}

// CallerFrom retrieves the calling module recorded by WithCaller.
func CallerFrom(ctx context.Context) (entities.ModuleID, bool) {
	module, ok := ctx.Value(callerKey{}).(entities.ModuleID)
	return module, ok && module != ""
}
