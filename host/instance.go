package host

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/domain/ports"
	idbwazero "github.com/reglet-dev/reglet-idb/infrastructure/wazero"
)

// ErrReentrantCall is returned when a call chain reaches a module that is
// already executing further up the same chain.
var ErrReentrantCall = errors.New("reentrant call into module")

// Instance is an instantiated WASM module. Calls are serialized.
type Instance struct {
	module   api.Module
	compiled wazero.CompiledModule
	id       entities.ModuleID
	mu       sync.Mutex
}

// ID returns the module id the instance was loaded under.
func (i *Instance) ID() entities.ModuleID {
	return i.id
}

// HasExport reports whether the guest exports a function named name.
func (i *Instance) HasExport(name string) bool {
	return i.module.ExportedFunction(name) != nil
}

// Export returns an invoker for a (ptr,len)->packed export.
func (i *Instance) Export(name string) *WasmExport {
	return &WasmExport{instance: i, name: name}
}

// Close closes the module instance and its compiled code.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return errors.Join(i.module.Close(ctx), i.compiled.Close(ctx))
}

// Call copies input into guest memory, calls export and returns a copy of the
// bytes its packed result points at. A zero length result is an empty reply.
func (i *Instance) Call(ctx context.Context, export string, input []byte) ([]byte, error) {
	if active(ctx, i.id) {
		return nil, fmt.Errorf("%w: %s", ErrReentrantCall, i.id)
	}
	ctx = withActive(ctx, i.id)

	i.mu.Lock()
	defer i.mu.Unlock()

	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("export %q not found in %s", export, i.id)
	}

	ptr, err := i.write(ctx, input)
	if err != nil {
		return nil, err
	}

	results, err := fn.Call(ctx, uint64(ptr), uint64(len(input)))
	if err != nil {
		// wazero recovers host function panics and returns them wrapped.
		var ie *domainerrors.InvariantError
		if errors.As(err, &ie) {
			panic(ie)
		}
		return nil, fmt.Errorf("call %s.%s: %w", i.id, export, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("call %s.%s: no result", i.id, export)
	}
	return i.read(results[0])
}

func (i *Instance) write(ctx context.Context, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	res, err := i.module.ExportedFunction(idbwazero.AllocateExport).Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest %s: %w", i.id, err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("allocate in guest %s returned no results", i.id)
	}
	ptr := uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !i.module.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("failed to write input to guest %s memory", i.id)
	}
	return ptr, nil
}

func (i *Instance) read(packed uint64) ([]byte, error) {
	ptr, length := idbwazero.UnpackPtrLen(packed)
	if length == 0 {
		return nil, nil
	}
	data, ok := i.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read response from %s memory", i.id)
	}
	return slices.Clone(data), nil
}

// WasmExport is a guest export published into the directory.
type WasmExport struct {
	instance *Instance
	name     string
}

var _ ports.Invoker = (*WasmExport)(nil)

// Invoke calls the export with payload.
func (w *WasmExport) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	return w.instance.Call(ctx, w.name, payload)
}

// Module returns the module the export belongs to.
func (w *WasmExport) Module() entities.ModuleID {
	return w.instance.id
}

// ImplementationName reports the class name shown in snapshots when the
// manifest does not declare one.
func (w *WasmExport) ImplementationName() string {
	return string(w.instance.id) + "." + w.name
}

type activeKey struct{}

// withActive records id on the chain of modules executing for ctx.
func withActive(ctx context.Context, id entities.ModuleID) context.Context {
	chain, _ := ctx.Value(activeKey{}).([]entities.ModuleID)
	return context.WithValue(ctx, activeKey{}, append(slices.Clip(chain), id))
}

func active(ctx context.Context, id entities.ModuleID) bool {
	chain, _ := ctx.Value(activeKey{}).([]entities.ModuleID)
	return slices.Contains(chain, id)
}
