package lang

import (
	"errors"
	"fmt"
)

// Standard errors returned by the language facade.
var (
	// ErrNoProvider indicates no provider is configured.
	ErrNoProvider = errors.New("no language provider configured")

	// ErrNotReady indicates the provider is not ready for requests.
	ErrNotReady = errors.New("language provider not ready")

	// ErrTimeout indicates a request exceeded its deadline.
	ErrTimeout = errors.New("language request timed out")

	// ErrUnsupported indicates the provider does not implement the
	// requested operation.
	ErrUnsupported = errors.New("operation not supported by provider")
)

// RequestError wraps a provider failure with the operation that failed.
type RequestError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}
