package hostfuncs

import (
	"encoding/json"
	"errors"

	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
)

// ErrorResponse is the structured error returned as JSON to guests in place
// of a WASM trap.
type ErrorResponse struct {
	// Error is a machine-readable identifier, e.g. "VALIDATION_ERROR".
	Error string `json:"error"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Code is an HTTP-like status code.
	Code int `json:"code"`

	// Detail is set when an implementation failed with a domain error.
	Detail *entities.ErrorDetail `json:"detail,omitempty"`
}

// ToJSON serializes the ErrorResponse. Returns nil if serialization fails.
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// IsErrorResponse reports whether data decodes as an ErrorResponse.
func IsErrorResponse(data []byte) (ErrorResponse, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return ErrorResponse{}, false
	}
	return resp, resp.Error != "" && resp.Code != 0
}

// NewValidationError creates an error response for bad input.
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{Error: "VALIDATION_ERROR", Message: message, Code: 400}
}

// NewForbiddenError creates an error response for a key the caller may not invoke.
func NewForbiddenError(message string) ErrorResponse {
	return ErrorResponse{Error: "FORBIDDEN", Message: message, Code: 403}
}

// NewNotFoundError creates an error response for unknown handler names.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{Error: "NOT_FOUND", Message: "unknown host function: " + name, Code: 404}
}

// NewUnboundError creates an error response for a subscription with no implementation.
func NewUnboundError(message string) ErrorResponse {
	return ErrorResponse{Error: "UNBOUND", Message: message, Code: 503}
}

// NewInternalError creates an error response for unexpected failures.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{Error: "INTERNAL_ERROR", Message: message, Code: 500}
}

// NewPanicError creates an error response for recovered panics.
func NewPanicError(panicValue any) ErrorResponse {
	var msg string
	switch v := panicValue.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = "panic recovered"
	}
	return ErrorResponse{Error: "INTERNAL_ERROR", Message: "panic: " + msg, Code: 500}
}

// ErrorResponseFrom maps a resolver or invocation error to an ErrorResponse.
func ErrorResponseFrom(err error) ErrorResponse {
	switch {
	case errors.Is(err, domainerrors.ErrNotSubscribed), errors.Is(err, domainerrors.ErrSelfInvoke):
		return NewForbiddenError(err.Error())
	case errors.Is(err, domainerrors.ErrUnbound):
		return NewUnboundError(err.Error())
	default:
		resp := NewInternalError(err.Error())
		resp.Detail = domainerrors.ToErrorDetail(err)
		return resp
	}
}
