// Package httpdto holds the wire types of the daemon HTTP API, shared
// by the server handlers and the eventctl client.
package httpdto

import "github.com/matheus3301/eventd/internal/schema"

// Response is the uniform JSON envelope of the HTTP API.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	// Fields carries per-field validation errors when Code is
	// VALIDATION_FAILED.
	Fields []schema.FieldError `json:"fields,omitempty"`
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse builds an error envelope with a machine-readable
// code.
func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}
