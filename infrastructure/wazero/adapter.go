package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/hostfuncs"
	idblog "github.com/reglet-dev/reglet-idb/log"
)

// HostModuleName is the import module guests use for host functions.
const HostModuleName = "idb_host"

// AllocateExport is the guest export used to obtain response memory.
const AllocateExport = "allocate"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	Logger *slog.Logger

	// ModuleName is the host module name (default: "idb_host").
	ModuleName string

	// CustomHandlers are exported alongside the registry handlers.
	CustomHandlers []CustomHandler

	// MaxRequestSize limits the size of incoming requests from guest memory.
	MaxRequestSize uint32
}

// CustomHandler is a wazero function that does not follow the packed
// request/response pattern, such as log_message which returns nothing.
type CustomHandler struct {
	Handler     api.GoModuleFunc
	Name        string
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithCustomHandler adds a custom wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// WithLogger sets the logger for adapter failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     HostModuleName,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
		Logger:         slog.Default(),
	}
}

// RegisterWithRuntime instantiates a host module exporting every handler in
// registry plus any custom handlers.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.HandlerRegistry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, name := range registry.Names() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = handleRegistryCall(ctx, mod, stack[0], registry, name, &cfg)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(name)
	}

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate host module %s: %w", cfg.ModuleName, err)
	}
	return nil
}

func handleRegistryCall(ctx context.Context, mod api.Module, packed uint64, registry *hostfuncs.HandlerRegistry, name string, cfg *AdapterConfig) uint64 {
	ctx = hostfuncs.WithCaller(ctx, entities.ModuleID(mod.Name()))

	request, errResp := readRequest(mod, packed, cfg.MaxRequestSize)
	if errResp != nil {
		cfg.Logger.ErrorContext(ctx, "wazero: "+errResp.Message, "function", name, "module", mod.Name())
		return writeResponse(ctx, mod, errResp.ToJSON(), cfg.Logger)
	}

	response, err := registry.Invoke(ctx, name, request)
	if err != nil {
		cfg.Logger.ErrorContext(ctx, "wazero: handler invocation failed", "function", name, "error", err)
		response = hostfuncs.NewInternalError(err.Error()).ToJSON()
	}
	return writeResponse(ctx, mod, response, cfg.Logger)
}

func readRequest(mod api.Module, packed uint64, maxSize uint32) ([]byte, *hostfuncs.ErrorResponse) {
	ptr, length := UnpackPtrLen(packed)
	if length > maxSize {
		resp := hostfuncs.NewValidationError(fmt.Sprintf("request size %d exceeds maximum %d bytes", length, maxSize))
		return nil, &resp
	}
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		resp := hostfuncs.NewInternalError("failed to read request from guest memory")
		return nil, &resp
	}
	// Memory().Read returns a view; copy so handlers may call back into the guest.
	return append([]byte(nil), data...), nil
}

// writeResponse allocates memory in the guest and copies data into it.
// Returns packed ptr+len, or 0 on failure.
func writeResponse(ctx context.Context, mod api.Module, data []byte, logger *slog.Logger) uint64 {
	allocate := mod.ExportedFunction(AllocateExport)
	if allocate == nil {
		logger.ErrorContext(ctx, "wazero: guest module missing allocate export", "module", mod.Name())
		return 0
	}

	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to call guest allocate", "module", mod.Name(), "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory", "module", mod.Name())
		return 0
	}
	return PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: bounded by guest allocation
}

// LogMessageHandler returns the log_message custom handler. The guest passes
// a packed pointer to a JSON LogMessageWire; nothing is returned.
func LogMessageHandler(logger *slog.Logger) CustomHandler {
	return CustomHandler{
		Name:       "log_message",
		ParamTypes: []api.ValueType{api.ValueTypeI64},
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			ptr, length := UnpackPtrLen(stack[0])
			data, ok := mod.Memory().Read(ptr, length)
			if !ok {
				logger.WarnContext(ctx, "wazero: log_message out of bounds", "module", mod.Name())
				return
			}
			if err := idblog.Emit(ctx, logger, entities.ModuleID(mod.Name()), data); err != nil {
				logger.WarnContext(ctx, "wazero: dropped guest log record", "module", mod.Name(), "error", err)
			}
		}),
	}
}

// PackPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func PackPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a pointer and length from a packed i64.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: packed format stores 32-bit values
	return ptr, length
}
