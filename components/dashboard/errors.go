package dashboard

import (
	"errors"
	"fmt"
)

var (
	errMissingBackend = errors.New("dashboard: backend not configured")
	errUnknownSession = errors.New("dashboard: unknown session")

	errMissingStreamSession = errors.New("dashboard: session is required")
)

// NetworkError reports a failed request or a non-2xx response. Status is zero
// when the request never produced a response.
type NetworkError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("HTTP error: %d", e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return "request failed"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not well-formed JSON.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports rejected user input such as an inverted date range.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MissingElementError reports a slot the current view does not expose. It is
// logged, never shown to the viewer.
type MissingElementError struct {
	Slot string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("dashboard: view has no slot %q", e.Slot)
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
