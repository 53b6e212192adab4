package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrClient marks caller misuse detected locally, before any request is
	// sent: malformed inputs, mixed batches, invalid session use.
	ErrClient = errors.New("client error")

	// ErrTransport marks a network-level failure that outlived the retry
	// policy.
	ErrTransport = errors.New("transport error")

	// ErrApplication marks a failure reported by the service in an otherwise
	// well-formed response.
	ErrApplication = errors.New("application error")
)

// ClientErrorf formats a message and wraps it with ErrClient.
func ClientErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrClient, fmt.Sprintf(format, args...))
}

// ApplicationError carries the service's error message.
type ApplicationError struct {
	// Message is the `error` field of the response body.
	Message string

	// StatusCode is the HTTP status of the response, if known.
	StatusCode int
}

func (e *ApplicationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("application error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "application error: " + e.Message
}

func (e *ApplicationError) Unwrap() error { return ErrApplication }

// TransportError is returned once every attempt at an HTTP exchange failed.
//
// The last underlying error can be accessed via errors.Unwrap.
type TransportError struct {
	Attempts int
	cause    error
}

// NewTransportError wraps the last failure of an exchange.
func NewTransportError(attempts int, cause error) *TransportError {
	return &TransportError{Attempts: attempts, cause: cause}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error after %d attempts: %v", e.Attempts, e.cause)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.cause} }

// IsClientError reports whether err is caller misuse.
func IsClientError(err error) bool { return errors.Is(err, ErrClient) }

// IsTransportError reports whether err is a network failure.
func IsTransportError(err error) bool { return errors.Is(err, ErrTransport) }

// IsApplicationError reports whether err was reported by the service.
func IsApplicationError(err error) bool { return errors.Is(err, ErrApplication) }
