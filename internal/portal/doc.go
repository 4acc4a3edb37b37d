// Package portal computes viewport-clamped placement rectangles for
// transient popups (completion lists, location lists, tooltips).
//
// Place is deterministic and side-effect-free: identical inputs always
// produce identical bounds, which keeps placement decisions testable.
package portal
