// Package domainerrors defines the coded error type shared by services and
// transport. Services return these (optionally wrapping a cause) and the HTTP
// layer maps the code to a status without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeBadRequest     Code = "bad_request"
	CodeInvalidRequest Code = "invalid_request"
	CodeValidation     Code = "validation_error"
	CodeNotFound       Code = "not_found"
	CodeUnavailable    Code = "unavailable"
	CodeInternal       Code = "internal_error"
)

// FieldDetail names one offending input field.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldDetail
	Err     error
}

// New creates a coded error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithFields returns a copy of the error carrying field-level detail.
func (e *Error) WithFields(fields ...FieldDetail) *Error {
	cp := *e
	cp.Fields = append(append([]FieldDetail(nil), e.Fields...), fields...)
	return &cp
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err (or anything it wraps) is a domain error with code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ToHTTPStatus maps a code to the HTTP status the transport should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
