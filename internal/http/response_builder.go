// Package http provides the JSON API over the expense ledger.
//
// This file implements the Builder Pattern for constructing JSON responses
// so every handler writes headers, status and body the same way.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finanzapp/internal/core"
	"finanzapp/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// ErrorFor maps ledger errors to responses: validation failures are 422,
// failed writes 503 and anything else 500.
func ErrorFor(err error) *JSONResponseBuilder {
	var (
		verr *core.ValidationError
		werr *core.StorageWriteError
	)
	switch {
	case errors.As(err, &verr):
		return NewJSONResponse().
			Status(http.StatusUnprocessableEntity).
			Body(errorBody{Error: verr.Err.Error(), Field: verr.Field})
	case errors.As(err, &werr):
		return ErrorResponse(http.StatusServiceUnavailable, "could not save, try again")
	default:
		return ErrorResponse(http.StatusInternalServerError, "internal error")
	}
}

// errorType classifies err for structured logs.
func errorType(err error) string {
	var (
		verr *core.ValidationError
		werr *core.StorageWriteError
		rerr *core.StorageReadError
	)
	switch {
	case errors.As(err, &verr):
		return log.ErrorTypeValidation
	case errors.As(err, &werr):
		return log.ErrorTypeStorageWrite
	case errors.As(err, &rerr):
		return log.ErrorTypeStorageRead
	default:
		return log.ErrorTypeInternal
	}
}
