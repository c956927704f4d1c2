package hostfuncs

import (
	"context"
	"encoding/json"
)

// DefaultMaxRequestSize bounds a single request read from guest memory.
const DefaultMaxRequestSize uint32 = 1 << 20

// HostFunc is a typed host function.
type HostFunc[Req any, Resp any] func(context.Context, Req) Resp

// ByteHandler is a function that accepts raw bytes (JSON) and returns raw bytes (JSON).
// This is the common interface that WASM runtimes can easily use.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed HostFunc into a ByteHandler.
// Malformed requests produce an ErrorResponse rather than a Go error so the
// guest always receives a parseable reply.
func NewJSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewValidationError("failed to unmarshal request: " + err.Error()).ToJSON(), nil
		}

		respBytes, err := json.Marshal(fn(ctx, req))
		if err != nil {
			return NewInternalError("failed to marshal response: " + err.Error()).ToJSON(), nil
		}
		return respBytes, nil
	}
}
