// Package textedit applies range-addressed replacements to a line-oriented
// buffer.
//
// Edits arrive from language servers (formatting, rename, completion) against
// a document version that may be slightly stale relative to local typing, so
// every line and column reference is clipped into bounds before use rather
// than failing the batch. Edits are applied back-to-front so offset shifts
// from one replacement never disturb the coordinates of another.
//
// Apply and Invert are pure functions: they never mutate their inputs.
package textedit
