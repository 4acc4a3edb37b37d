package script

import (
	"errors"
	"fmt"
)

// ErrClosed indicates the engine has been shut down.
var ErrClosed = errors.New("script engine closed")

// HookError wraps a Lua failure with the event that triggered it.
type HookError struct {
	Event string
	Err   error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("hook %q: %v", e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Err
}
