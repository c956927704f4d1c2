package idb

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/manager"
)

// scopeConfig holds configuration for a Scope.
type scopeConfig struct {
	ctx    context.Context
	kind   *manager.Kind[directory.Item]
	logger *slog.Logger
}

func defaultScopeConfig() scopeConfig {
	return scopeConfig{
		ctx:    context.Background(),
		kind:   directory.Default,
		logger: slog.Default(),
	}
}

// ScopeOption configures a Scope.
type ScopeOption func(*scopeConfig)

// WithKind registers the scope's handles in kind instead of directory.Default.
func WithKind(kind *manager.Kind[directory.Item]) ScopeOption {
	return func(c *scopeConfig) {
		if kind != nil {
			c.kind = kind
		}
	}
}

// WithContext sets the context passed to the kind and the logger for every
// registration the scope makes, typically the context of the module load.
func WithContext(ctx context.Context) ScopeOption {
	return func(c *scopeConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the logger used for handle lifecycle events.
func WithLogger(l *slog.Logger) ScopeOption {
	return func(c *scopeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// handle is anything a Scope closes on the way out.
type handle interface {
	Close()
}

// Scope creates and tracks the directory handles of one module.
type Scope struct {
	module entities.ModuleID
	config scopeConfig

	mu      sync.Mutex
	handles []handle
	closed  bool
}

// NewScope returns a Scope registering handles on behalf of module.
func NewScope(module entities.ModuleID, opts ...ScopeOption) *Scope {
	errors.Check(module == "", "idb.scope", "empty module id")
	cfg := defaultScopeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scope{module: module, config: cfg}
}

// Module returns the module the scope registers for.
func (s *Scope) Module() entities.ModuleID {
	return s.module
}

// Kind returns the directory kind the scope registers in.
func (s *Scope) Kind() *manager.Kind[directory.Item] {
	return s.config.kind
}

// Logger returns the scope's logger.
func (s *Scope) Logger() *slog.Logger {
	return s.config.logger
}

// Publish registers instance as an implementation of key. An empty className
// is derived from the instance, see ImplementationName.
func (s *Scope) Publish(key entities.InterfaceKey, className string, instance any) *Publication {
	if className == "" {
		className = ImplementationName(instance)
	}
	impl := directory.NewImplementation(key, className, instance, s.module)

	s.mu.Lock()
	defer s.mu.Unlock()
	errors.Check(s.closed, "idb.publish", "scope %s is closed", s.module)

	s.config.kind.Add(s.config.ctx, s.module, impl)
	p := &Publication{scope: s, impl: impl}
	s.handles = append(s.handles, p)

	s.config.logger.DebugContext(s.config.ctx, "implementation published",
		"module", s.module, "key", key.String(), "class", className)
	return p
}

// subscribe registers a reference to key and tracks h, the handle owning it.
func (s *Scope) subscribe(key entities.InterfaceKey, h handle) *directory.Reference {
	ref := directory.NewReference(key, s.module)

	s.mu.Lock()
	defer s.mu.Unlock()
	errors.Check(s.closed, "idb.subscribe", "scope %s is closed", s.module)

	s.config.kind.Add(s.config.ctx, s.module, ref)
	s.handles = append(s.handles, h)
	s.config.logger.DebugContext(s.config.ctx, "reference registered",
		"module", s.module, "key", key.String())
	return ref
}

func (s *Scope) withdraw(it directory.Item) {
	s.config.kind.Remove(s.config.ctx, s.module, it)
}

// Close closes every handle created through the scope, newest first.
// Further Publish or Subscribe calls are violations. Close is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for _, h := range slices.Backward(handles) {
		h.Close()
	}
	s.config.logger.DebugContext(s.config.ctx, "scope closed", "module", s.module, "handles", len(handles))
}
