// Package apierror defines the JSON error envelopes of the menudia API.
// Every 4xx/5xx body is one of these two shapes; domain errors (stock
// insuficiente, item desconocido, venta sin persistir) are mapped onto them by
// the handlers, and raw internals (SQL errors, stack traces) never reach the
// client.
package apierror

// APIError carries a single human-readable message, in the language of the
// operators running the restaurant.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError reports per-field binding failures as a field → failed-tag
// map, so the POS frontend can highlight the offending inputs.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
