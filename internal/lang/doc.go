// Package lang bridges the editor to an external language-intelligence
// server through a narrow asynchronous facade.
//
// The wire protocol is somebody else's problem: a Provider implementation
// turns protocol calls into ordinary function calls returning structured
// results, and failures into typed errors. What this package owns is the
// request lifecycle around those calls — debounced triggering, snapshot
// capture at issue time, and staleness detection at response time.
//
// The user keeps typing while a request is in flight. Before a response is
// acted on, the Correlator compares the document context captured when the
// request was issued against the live context; mismatches are discarded
// silently. A stale result is not an error, it is simply no longer true.
package lang
