package entities

import "fmt"

// ErrorDetail is the structured form of a domain error. Guests receive it in
// the detail field of an idb_invoke error response.
// Types: "invariant", "config", "module", "validation", "internal".
type ErrorDetail struct {
	// Details carries extra context, e.g. the failing module id.
	Details map[string]any `json:"details,omitempty"`

	Message string `json:"message"`
	Type    string `json:"type"`

	// Code narrows Type: the module phase, the config field, the violated op.
	Code string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}
