// Package trigger provides a category-keyed, cancellable debounce scheduler.
//
// Rapid repeated stimuli (keystrokes, file-system events) are coalesced into
// one downstream call after a quiet period. Each category ("completion",
// "signature-help", "vcs-status") holds at most one pending timer; scheduling
// a new one silently cancels the previous.
//
// Fired actions never run on the timer goroutine. They are enqueued onto a
// dispatch queue and execute on the drain loop, preserving the single-writer
// invariant for presentation state.
package trigger
