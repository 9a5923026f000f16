package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by the domain and the HTTP layer
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeCourierError       = "COURIER_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewInvalidRequest reports a client-correctable input problem.
func NewInvalidRequest(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidRequest, fmt.Sprintf(format, args...))
}

// NewConfigurationError reports a missing or unusable configuration value.
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(CodeConfigurationError, message)
}

// NewCourierError reports a failed exchange with the courier gateway.
func NewCourierError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeCourierError,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFound reports a missing entity.
func NewNotFound(entity string) *DomainError {
	return NewDomainError(CodeNotFound, entity+" not found")
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidRequest     = NewDomainError(CodeInvalidRequest, "Invalid request")
	ErrConfigurationError = NewDomainError(CodeConfigurationError, "Service is not configured")
	ErrCourierError       = NewDomainError(CodeCourierError, "Courier request failed")
	ErrConflict           = NewDomainError(CodeConflict, "Operation conflicts with current state")
)
