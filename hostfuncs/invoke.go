package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
)

// InvokeFunction is the host function name guests import for directory calls.
const InvokeFunction = "idb_invoke"

// InvokeRequest asks the host to call the implementation bound to a key.
type InvokeRequest struct {
	Interface string          `json:"interface"`
	Instance  string          `json:"instance"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Key returns the requested interface key.
func (r InvokeRequest) Key() entities.InterfaceKey {
	return entities.Key(r.Interface, r.Instance)
}

// InvokeResponse carries the implementation's reply.
type InvokeResponse struct {
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewInvokeHandler builds the idb_invoke handler. The caller is taken from
// the context (see WithCaller); only keys it subscribed to resolve.
func NewInvokeHandler(resolver ports.InvokeResolver) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req InvokeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewValidationError("failed to unmarshal request: " + err.Error()).ToJSON(), nil
		}
		key := req.Key()
		if key.IsZero() {
			return NewValidationError("interface and instance are required").ToJSON(), nil
		}

		caller, ok := CallerFrom(ctx)
		if !ok {
			return NewForbiddenError("calling module is unknown").ToJSON(), nil
		}

		invoker, err := resolver.Resolve(caller, key)
		if err != nil {
			return ErrorResponseFrom(fmt.Errorf("%s: %w", key, err)).ToJSON(), nil
		}

		out, err := invoker.Invoke(ctx, req.Payload)
		if err != nil {
			return ErrorResponseFrom(fmt.Errorf("invoke %s: %w", key, err)).ToJSON(), nil
		}
		if len(out) > 0 && !json.Valid(out) {
			return NewInternalError(fmt.Sprintf("invoke %s: implementation returned invalid JSON", key)).ToJSON(), nil
		}

		data, err := json.Marshal(InvokeResponse{Payload: out})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return data, nil
	}
}
