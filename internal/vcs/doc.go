// Package vcs reports git working-tree state for the status line.
//
// Refreshes shell out to git off the UI goroutine and deliver the parsed
// Status as a queued action. A filesystem watcher on the .git directory
// triggers debounced refreshes so the status line tracks commits, branch
// switches, and index changes made outside the editor.
package vcs
