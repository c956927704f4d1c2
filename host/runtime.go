package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	idb "github.com/reglet-dev/reglet-idb"
	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/domain/ports"
	"github.com/reglet-dev/reglet-idb/hostfuncs"
	"github.com/reglet-dev/reglet-idb/manager"
)

// Module is an extension linked into the host binary. Setup registers the
// module's publications and subscriptions on scope; it must not start work
// that outlives a later Unload.
type Module interface {
	Name() entities.ModuleID
	Setup(scope *idb.Scope, cfg idb.Config) error
}

// Stopper is implemented by static modules that need a hook after their
// scope is closed.
type Stopper interface {
	Stop(ctx context.Context) error
}

type loadedModule struct {
	scope    *idb.Scope
	static   Module
	instance *Instance
	manifest *entities.Manifest
	subs     map[entities.InterfaceKey]*idb.Subscription[any]
	id       entities.ModuleID
}

// Runtime hosts static and WASM modules around one interface directory.
type Runtime struct {
	config   runtimeConfig
	executor *Executor
	scope    *idb.Scope
	modules  map[entities.ModuleID]*loadedModule
	order    []entities.ModuleID
	mu       sync.RWMutex
	closed   bool
}

var _ ports.InvokeResolver = (*Runtime)(nil)

// NewRuntime creates a runtime and its executor.
func NewRuntime(ctx context.Context, opts ...RuntimeOption) (*Runtime, error) {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loader == nil {
		cfg.loader = NewLoader()
	}

	r := &Runtime{
		config:  cfg,
		modules: make(map[entities.ModuleID]*loadedModule),
	}

	registry, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(
			hostfuncs.PanicRecoveryMiddleware(cfg.logger),
			hostfuncs.LoggingMiddleware(cfg.logger),
		),
		hostfuncs.WithBundle(hostfuncs.DirectoryBundle(r)),
	)
	if err != nil {
		return nil, err
	}

	execOpts := append([]ExecutorOption{
		WithHostFunctions(registry),
		WithExecutorLogger(cfg.logger),
	}, cfg.executor...)
	if r.executor, err = NewExecutor(ctx, execOpts...); err != nil {
		return nil, err
	}

	r.scope = idb.NewScope(cfg.hostID, idb.WithKind(cfg.kind), idb.WithLogger(cfg.logger), idb.WithContext(ctx))
	return r, nil
}

// Scope returns the host module's own scope.
func (r *Runtime) Scope() *idb.Scope {
	return r.scope
}

// Install registers a static module and merges it into the host.
func (r *Runtime) Install(ctx context.Context, m Module, cfg idb.Config) error {
	id := m.Name()
	if err := r.reserve(id); err != nil {
		return err
	}

	scope := r.newScope(ctx, id)
	if err := m.Setup(scope, cfg); err != nil {
		r.abandon(ctx, id, scope)
		return &domainerrors.ModuleError{Module: id, Phase: "setup", Err: err}
	}

	r.commit(ctx, &loadedModule{id: id, scope: scope, static: m})
	return nil
}

// LoadFile loads a manifest and its WASM binary from disk.
func (r *Runtime) LoadFile(ctx context.Context, manifestPath, wasmPath string, cfg idb.Config) error {
	manifest, err := r.config.loader.LoadManifestFile(manifestPath, cfg)
	if err != nil {
		return err
	}
	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return &domainerrors.ModuleError{Module: manifest.ID(), Phase: "load", Err: err}
	}
	return r.LoadWasm(ctx, manifest, wasm)
}

// LoadWasm instantiates wasm for a validated manifest, publishes its exports,
// subscribes to its declared keys and merges it into the host.
func (r *Runtime) LoadWasm(ctx context.Context, manifest *entities.Manifest, wasm []byte) error {
	id := manifest.ID()
	if err := r.reserve(id); err != nil {
		return err
	}

	inst, err := r.executor.Load(ctx, id, wasm)
	if err != nil {
		r.release(id)
		return err
	}
	for _, p := range manifest.Publishes {
		if !inst.HasExport(p.Export) {
			_ = inst.Close(ctx)
			r.release(id)
			return &domainerrors.ModuleError{Module: id, Phase: "load",
				Err: fmt.Errorf("publication %s names missing export %q", p.Key(), p.Export)}
		}
	}

	scope := r.newScope(ctx, id)
	for _, p := range manifest.Publishes {
		scope.Publish(p.Key(), p.ClassName(), inst.Export(p.Export))
	}
	subs := make(map[entities.InterfaceKey]*idb.Subscription[any], len(manifest.Subscribes))
	for _, k := range manifest.Subscribes {
		subs[k] = idb.Subscribe[any](scope, k)
	}

	r.commit(ctx, &loadedModule{id: id, scope: scope, instance: inst, manifest: manifest, subs: subs})
	return nil
}

// Unload tears a module down: its handles are closed, its registrar is
// released, then its code is stopped or closed.
func (r *Runtime) Unload(ctx context.Context, id entities.ModuleID) error {
	r.mu.Lock()
	lm, ok := r.modules[id]
	ok = ok && lm != nil
	if ok {
		delete(r.modules, id)
		r.order = slices.DeleteFunc(r.order, func(m entities.ModuleID) bool { return m == id })
	}
	r.mu.Unlock()
	if !ok {
		return &domainerrors.ModuleError{Module: id, Phase: "unload", Err: errors.New("module not loaded")}
	}

	lm.scope.Close()
	r.config.kind.Release(ctx, id)

	var err error
	if s, ok := lm.static.(Stopper); ok {
		err = s.Stop(ctx)
	}
	if lm.instance != nil {
		err = errors.Join(err, lm.instance.Close(ctx))
	}
	if err != nil {
		return &domainerrors.ModuleError{Module: id, Phase: "unload", Err: err}
	}
	r.config.logger.InfoContext(ctx, "module unloaded", "module", id)
	return nil
}

// Close unloads every module, newest first, then the host's own scope and
// the executor.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	order := slices.Clone(r.order)
	r.mu.Unlock()

	var errs []error
	for _, id := range slices.Backward(order) {
		if err := r.Unload(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	r.scope.Close()
	r.config.kind.Release(ctx, r.config.hostID)
	errs = append(errs, r.executor.Close(ctx))
	return errors.Join(errs...)
}

// Resolve implements ports.InvokeResolver for guest idb_invoke calls.
func (r *Runtime) Resolve(caller entities.ModuleID, key entities.InterfaceKey) (ports.Invoker, error) {
	r.mu.RLock()
	lm, ok := r.modules[caller]
	var sub *idb.Subscription[any]
	if ok && lm != nil {
		sub, ok = lm.subs[key]
	}
	r.mu.RUnlock()
	if !ok {
		return nil, domainerrors.ErrNotSubscribed
	}

	v, bound := sub.Get()
	if !bound {
		return nil, domainerrors.ErrUnbound
	}
	inv, ok := v.(ports.Invoker)
	if !ok {
		return nil, fmt.Errorf("%w: %s implementation %s is not invocable", domainerrors.ErrUnbound, key, sub.Class())
	}
	if w, ok := inv.(*WasmExport); ok && w.Module() == caller {
		return nil, domainerrors.ErrSelfInvoke
	}
	return inv, nil
}

// Call invokes the implementation active in the host's directory for key.
func (r *Runtime) Call(ctx context.Context, key entities.InterfaceKey, payload []byte) ([]byte, error) {
	var impl *directory.Implementation
	r.config.kind.View(r.config.hostID, func(rec manager.Record[directory.Item]) {
		if d, ok := rec.(*directory.Directory); ok {
			impl = d.Active(key)
		}
	})
	if impl == nil {
		return nil, fmt.Errorf("%s: %w", key, domainerrors.ErrUnbound)
	}
	inv, ok := impl.Instance().(ports.Invoker)
	if !ok {
		return nil, fmt.Errorf("%s: implementation %s is not invocable", key, impl.Class())
	}
	return inv.Invoke(ctx, payload)
}

// Snapshot lists the host directory's entries.
func (r *Runtime) Snapshot() []entities.EntrySnapshot {
	var out []entities.EntrySnapshot
	r.config.kind.View(r.config.hostID, func(rec manager.Record[directory.Item]) {
		if d, ok := rec.(*directory.Directory); ok {
			out = d.Snapshot()
		}
	})
	return out
}

// Modules returns the loaded module ids in load order.
func (r *Runtime) Modules() []entities.ModuleID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Manifest returns the manifest a WASM module was loaded from.
func (r *Runtime) Manifest(id entities.ModuleID) (*entities.Manifest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lm, ok := r.modules[id]
	if !ok || lm.manifest == nil {
		return nil, false
	}
	return lm.manifest, true
}

// Stats returns the directory kind's lifecycle counters.
func (r *Runtime) Stats() entities.KindStats {
	return r.config.kind.Stats()
}

func (r *Runtime) newScope(ctx context.Context, id entities.ModuleID) *idb.Scope {
	return idb.NewScope(id, idb.WithKind(r.config.kind), idb.WithLogger(r.config.logger), idb.WithContext(ctx))
}

// reserve claims id so concurrent loads of the same module fail fast.
func (r *Runtime) reserve(id entities.ModuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		return &domainerrors.ModuleError{Module: id, Phase: "load", Err: errors.New("runtime is closed")}
	case id == r.config.hostID:
		return &domainerrors.ModuleError{Module: id, Phase: "load", Err: errors.New("module id is reserved for the host")}
	}
	if _, exists := r.modules[id]; exists {
		return &domainerrors.ModuleError{Module: id, Phase: "load", Err: errors.New("module already loaded")}
	}
	r.modules[id] = nil
	return nil
}

func (r *Runtime) release(id entities.ModuleID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lm, ok := r.modules[id]; ok && lm == nil {
		delete(r.modules, id)
	}
}

// abandon undoes a failed Setup: whatever the module registered is withdrawn.
func (r *Runtime) abandon(ctx context.Context, id entities.ModuleID, scope *idb.Scope) {
	scope.Close()
	r.config.kind.Release(ctx, id)
	r.release(id)
}

func (r *Runtime) commit(ctx context.Context, lm *loadedModule) {
	r.config.kind.Merge(ctx, r.config.hostID, lm.id)

	r.mu.Lock()
	r.modules[lm.id] = lm
	r.order = append(r.order, lm.id)
	r.mu.Unlock()

	r.config.logger.InfoContext(ctx, "module loaded", "module", lm.id, "wasm", lm.instance != nil)
}
