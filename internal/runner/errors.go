package runner

import "errors"

var (
	// ErrNotFound indicates no run exists with the given ID.
	ErrNotFound = errors.New("run not found")

	// ErrNotRunning indicates the run has already finished.
	ErrNotRunning = errors.New("run not running")

	// ErrEmptyCommand indicates Start was called without a command.
	ErrEmptyCommand = errors.New("empty command")
)
