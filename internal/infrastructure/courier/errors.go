package courier

import (
	"errors"

	"github.com/boutique/storefront/internal/domain/shared"
)

// Sentinel errors of the courier client
var (
	ErrMissingCredentials = errors.New("courier: api key and secret key are required")
	ErrServiceUnavailable = errors.New("courier: service not responding")
	ErrRequestFailed      = errors.New("courier: request failed")
)

const notRespondingMessage = "Courier service is not responding"

// Error is a failed courier call. Message is the most specific text the
// courier returned, or a generic description when none was available.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// missingCredentials is reported for every call made without API keys
func missingCredentials() error {
	return &shared.DomainError{
		Code:    shared.CodeConfigurationError,
		Message: "courier credentials are not configured",
		Cause:   ErrMissingCredentials,
	}
}
