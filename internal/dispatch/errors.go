package dispatch

import "errors"

// Standard errors returned by the dispatch layer.
var (
	// ErrAlreadyRunning indicates the loop is already running.
	ErrAlreadyRunning = errors.New("drain loop already running")

	// ErrNotRunning indicates the loop has not been started.
	ErrNotRunning = errors.New("drain loop not running")
)
