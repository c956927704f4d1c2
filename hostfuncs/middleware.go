package hostfuncs

import (
	"context"
	"log/slog"
	"time"

	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

// Middleware wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware converts panics into ErrorResponse JSON instead of
// crashing the host. Invariant violations are logged with the failing
// operation and re-raised.
func PanicRecoveryMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if ie, ok := domainerrors.AsInvariant(r); ok {
					logger.ErrorContext(ctx, "invariant violation in host function",
						"function", functionName(ctx), "op", ie.Op, "detail", ie.Detail)
					panic(r)
				}
				logger.ErrorContext(ctx, "host function panicked", "function", functionName(ctx), "panic", r)
				resp = NewPanicError(r).ToJSON()
				err = nil
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every host function invocation at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := functionName(ctx)
			attrs := []any{"function", name, "request_bytes", len(payload)}
			if caller, ok := CallerFrom(ctx); ok {
				attrs = append(attrs, "caller", caller)
			}
			logger.DebugContext(ctx, "invoking host function", attrs...)

			start := time.Now()
			resp, err := next(ctx, payload)
			if err != nil {
				logger.WarnContext(ctx, "host function failed", "function", name, "error", err)
				return resp, err
			}
			logger.DebugContext(ctx, "host function completed",
				"function", name, "response_bytes", len(resp), "duration", time.Since(start))
			return resp, nil
		}
	}
}

func functionName(ctx context.Context) string {
	if hc, ok := ctx.(HostContext); ok {
		return hc.FunctionName()
	}
	return "unknown"
}
