package host

import (
	"log/slog"

	"github.com/reglet-dev/reglet-idb/directory"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/hostfuncs"
	"github.com/reglet-dev/reglet-idb/manager"
)

type executorConfig struct {
	registry       *hostfuncs.HandlerRegistry
	logger         *slog.Logger
	maxRequestSize uint32
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		logger:         slog.Default(),
		maxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executorConfig)

// WithHostFunctions sets the host functions exported as idb_host.
func WithHostFunctions(registry *hostfuncs.HandlerRegistry) ExecutorOption {
	return func(c *executorConfig) {
		c.registry = registry
	}
}

// WithMaxRequestSize bounds host function requests read from guest memory.
func WithMaxRequestSize(size uint32) ExecutorOption {
	return func(c *executorConfig) {
		c.maxRequestSize = size
	}
}

// WithExecutorLogger sets the logger for guest log records and adapter failures.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(c *executorConfig) {
		c.logger = logger
	}
}

type runtimeConfig struct {
	kind     *manager.Kind[directory.Item]
	logger   *slog.Logger
	loader   *Loader
	hostID   entities.ModuleID
	executor []ExecutorOption
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		kind:   directory.Default,
		logger: slog.Default(),
		hostID: entities.HostModule,
	}
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeConfig)

// WithKind sets the directory kind (default directory.Default).
func WithKind(kind *manager.Kind[directory.Item]) RuntimeOption {
	return func(c *runtimeConfig) {
		c.kind = kind
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(c *runtimeConfig) {
		c.logger = logger
	}
}

// WithHostID sets the module id of the host itself (default "host").
func WithHostID(id entities.ModuleID) RuntimeOption {
	return func(c *runtimeConfig) {
		c.hostID = id
	}
}

// WithLoader sets the manifest loader used by LoadFile.
func WithLoader(loader *Loader) RuntimeOption {
	return func(c *runtimeConfig) {
		c.loader = loader
	}
}

// WithExecutorOptions passes options through to the runtime's Executor.
func WithExecutorOptions(opts ...ExecutorOption) RuntimeOption {
	return func(c *runtimeConfig) {
		c.executor = append(c.executor, opts...)
	}
}
