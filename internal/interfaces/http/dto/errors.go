package dto

import (
	"net/http"

	"github.com/boutique/storefront/internal/domain/shared"
)

// Domain error codes surfaced to clients unchanged
const (
	ErrCodeInvalidRequest     = shared.CodeInvalidRequest
	ErrCodeConfigurationError = shared.CodeConfigurationError
	ErrCodeCourierError       = shared.CodeCourierError
	ErrCodeNotFound           = shared.CodeNotFound
	ErrCodeConflict           = shared.CodeConflict
)

// Transport error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks the admin role
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeJobAlreadyRunning is used when a batch job is triggered while a run is in flight
	ErrCodeJobAlreadyRunning = "JOB_ALREADY_RUNNING"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInvalidRequest:     http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeConfigurationError: http.StatusServiceUnavailable,
	ErrCodeCourierError:       http.StatusBadGateway,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeJobAlreadyRunning:  http.StatusConflict,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
