// Package overlay owns the state of transient interactive popups: the
// completion list, the location list, and the hover tooltip.
//
// Each overlay follows one state machine shape — open, filter, select,
// accept, dismiss — regardless of kind, and at most one overlay of a given
// kind is live at a time. The full unfiltered item set and the currently
// filtered subset are both retained, so narrowing or widening the filter
// never re-queries the producing source.
//
// Overlay item sets are owned exclusively by the overlay instance and are
// only touched from the drain-loop goroutine; nothing here is safe for
// concurrent use, and nothing here needs to be.
package overlay
