package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/hostfuncs"
	idbwazero "github.com/reglet-dev/reglet-idb/infrastructure/wazero"
)

// Executor owns the wazero runtime that WASM modules are instantiated in.
type Executor struct {
	runtime wazero.Runtime
	config  executorConfig
}

// NewExecutor creates a wazero runtime with WASI and the idb_host module.
func NewExecutor(ctx context.Context, opts ...ExecutorOption) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.registry == nil {
		reg, err := hostfuncs.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		cfg.registry = reg
	}

	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate wasi: %w", err)
	}

	err := idbwazero.RegisterWithRuntime(ctx, rt, cfg.registry,
		idbwazero.WithLogger(cfg.logger),
		idbwazero.WithMaxRequestSize(cfg.maxRequestSize),
		idbwazero.WithCustomHandler(idbwazero.LogMessageHandler(cfg.logger)),
	)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Executor{runtime: rt, config: cfg}, nil
}

// Close releases every instance and the runtime.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Load compiles and instantiates wasm under the instance name id. The guest
// must export allocate; _initialize is called when present.
func (e *Executor) Load(ctx context.Context, id entities.ModuleID, wasm []byte) (*Instance, error) {
	fail := func(phase string, err error) (*Instance, error) {
		return nil, &domainerrors.ModuleError{Module: id, Phase: phase, Err: err}
	}

	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return fail("compile", err)
	}
	if _, ok := compiled.ExportedFunctions()[idbwazero.AllocateExport]; !ok {
		_ = compiled.Close(ctx)
		return fail("compile", fmt.Errorf("missing %q export", idbwazero.AllocateExport))
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(string(id)).WithStartFunctions())
	if err != nil {
		_ = compiled.Close(ctx)
		return fail("instantiate", err)
	}

	inst := &Instance{id: id, module: mod, compiled: compiled}
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = inst.Close(ctx)
			return fail("instantiate", fmt.Errorf("_initialize: %w", err))
		}
	}
	return inst, nil
}
