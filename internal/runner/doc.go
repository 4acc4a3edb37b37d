// Package runner executes external commands (build tools, formatters, test
// runs) and feeds their output through the dispatch queue.
//
// Each run scans stdout and stderr on its own goroutines and pushes one
// queue item per line; the UI never reads a pipe. Completion is reported
// the same way, as a queued action carrying the run's Result. The UI
// goroutine therefore observes a run only through drained items.
package runner
