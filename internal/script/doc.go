// Package script runs user hook scripts written in Lua.
//
// Scripts register handlers with the global on(event, fn). The editor fires
// events as they happen; handlers run on a dedicated goroutine owning the
// Lua state, so a slow or broken hook never blocks the UI. Only the base,
// table, string, and math libraries are opened. io, os, and debug stay
// closed to keep hooks from touching the system.
package script
