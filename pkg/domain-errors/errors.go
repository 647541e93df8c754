// Package domainerrors provides coded errors for translating domain failures
// into transport responses without leaking internals.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. The description is safe to show to API
// clients except for internal errors, where transports must omit it.
type Error struct {
	Code        Code
	Description string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Description
}

// Is makes two coded errors equal when code and description match, so
// callers can compare against a freshly constructed error.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Description == other.Description
}

// New constructs a coded domain error.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal so unknown
// failures never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
