// Package dispatch provides the hand-off path between background work and
// the single goroutine that owns presentation state.
//
// Background producers (language servers, build runners, version-control
// queries) never touch the editor surface directly. They push items onto a
// Queue from any goroutine, and a Loop running on the UI goroutine drains
// the queue at a fixed cadence, executing everything in FIFO order. This is
// the only place background-originated data is ever applied to presentation
// state.
//
// Items are either raw output lines (tagged with their producing source) or
// zero-argument deferred actions. Each item executes inside a panic guard so
// one failing action cannot stall the loop or crash the editor.
//
// The fixed-interval poll trades a few tens of milliseconds of latency for a
// concurrency model with no wake conditions and no lost-wakeup races.
package dispatch
