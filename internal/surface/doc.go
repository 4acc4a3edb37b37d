// Package surface presents buffer content, the status line, and overlay
// boxes on a terminal screen.
//
// A Surface is owned by the drain-loop goroutine. Background work never
// draws; it enqueues actions that mutate the surface when drained. The
// Memory implementation records the same mutations in plain fields so
// coordinator behavior can be asserted without a terminal.
package surface
