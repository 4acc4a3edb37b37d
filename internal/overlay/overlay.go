package overlay

import (
	"strings"

	"github.com/dshills/quill/internal/portal"
)

// Kind identifies the category of overlay.
type Kind uint8

const (
	// KindCompletion is the completion item list.
	KindCompletion Kind = iota
	// KindLocations is the definition/references location list.
	KindLocations
	// KindTooltip is the hover/signature tooltip.
	KindTooltip
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCompletion:
		return "completion"
	case KindLocations:
		return "locations"
	case KindTooltip:
		return "tooltip"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of an overlay.
type State uint8

const (
	// StateOpen indicates the overlay is live and interactive.
	StateOpen State = iota
	// StateAccepted indicates the user accepted the selection.
	StateAccepted
	// StateDismissed indicates the overlay was cancelled.
	StateDismissed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateAccepted:
		return "accepted"
	case StateDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Item is one entry in an overlay. It is an immutable value record; for
// completion overlays the insert/filter fields matter, for location lists
// the path/position/snippet fields do.
type Item struct {
	// Label is the displayed text.
	Label string

	// Detail is optional secondary text (type signature, file path).
	Detail string

	// InsertText is the canonical insertion text. Empty means Label.
	InsertText string

	// FilterText overrides Label for filtering. Empty means Label.
	FilterText string

	// Path, Line, Col identify a location entry's target.
	Path string
	Line int
	Col  int

	// Snippet is the context line for a location entry.
	Snippet string
}

// Insert returns the text inserted when the item is accepted.
func (it Item) Insert() string {
	if it.InsertText != "" {
		return it.InsertText
	}
	return it.Label
}

// filterKey returns the text the filter matches against.
func (it Item) filterKey() string {
	if it.FilterText != "" {
		return it.FilterText
	}
	return it.Label
}

// Overlay is one live popup: its item sets, filter, selection, anchor, and
// computed bounds.
type Overlay struct {
	kind  Kind
	state State

	items    []Item
	filtered []Item
	filter   string

	selection int

	// Buffer position the overlay was triggered at. TriggerCol marks where
	// the filter prefix begins; the caret moving left of it dismisses.
	triggerLine int
	triggerCol  int

	bounds portal.Rect
}

// New creates an open overlay over the full item set, anchored at the
// triggering buffer position. The filtered set starts as the full set.
func New(kind Kind, items []Item, triggerLine, triggerCol int) *Overlay {
	return &Overlay{
		kind:        kind,
		state:       StateOpen,
		items:       items,
		filtered:    items,
		triggerLine: triggerLine,
		triggerCol:  triggerCol,
	}
}

// Kind returns the overlay category.
func (o *Overlay) Kind() Kind { return o.kind }

// State returns the lifecycle state.
func (o *Overlay) State() State { return o.state }

// IsOpen returns true while the overlay is live.
func (o *Overlay) IsOpen() bool { return o.state == StateOpen }

// Items returns the full unfiltered item set.
func (o *Overlay) Items() []Item { return o.items }

// Filtered returns the currently filtered subset.
func (o *Overlay) Filtered() []Item { return o.filtered }

// FilterText returns the current filter string.
func (o *Overlay) FilterText() string { return o.filter }

// Selection returns the selected index into Filtered.
func (o *Overlay) Selection() int { return o.selection }

// TriggerLine returns the buffer line the overlay was opened on.
func (o *Overlay) TriggerLine() int { return o.triggerLine }

// TriggerCol returns the buffer column the filter prefix begins at.
func (o *Overlay) TriggerCol() int { return o.triggerCol }

// Bounds returns the placed rectangle.
func (o *Overlay) Bounds() portal.Rect { return o.bounds }

// SetBounds records the rectangle computed by the placement solver.
func (o *Overlay) SetBounds(r portal.Rect) { o.bounds = r }

// Filter re-derives the filtered subset with a case-insensitive prefix match
// against the full item set and resets the selection to the first entry.
// If nothing matches, the overlay dismisses itself and Filter returns false:
// an empty box is worse than no box.
func (o *Overlay) Filter(text string) bool {
	if o.state != StateOpen {
		return false
	}

	o.filter = text
	if text == "" {
		o.filtered = o.items
		o.selection = 0
		return true
	}

	lower := strings.ToLower(text)
	filtered := make([]Item, 0, len(o.items))
	for _, it := range o.items {
		if strings.HasPrefix(strings.ToLower(it.filterKey()), lower) {
			filtered = append(filtered, it)
		}
	}

	if len(filtered) == 0 {
		o.Dismiss()
		return false
	}

	o.filtered = filtered
	o.selection = 0
	return true
}

// SelectNext moves the selection down one entry, clamping at the end. No
// wraparound: repeated presses at the boundary are no-ops.
func (o *Overlay) SelectNext() {
	if o.state != StateOpen {
		return
	}
	if o.selection < len(o.filtered)-1 {
		o.selection++
	}
}

// SelectPrev moves the selection up one entry, clamping at the start.
func (o *Overlay) SelectPrev() {
	if o.state != StateOpen {
		return
	}
	if o.selection > 0 {
		o.selection--
	}
}

// Selected returns the currently selected item.
func (o *Overlay) Selected() (Item, bool) {
	if o.state != StateOpen || o.selection >= len(o.filtered) {
		return Item{}, false
	}
	return o.filtered[o.selection], true
}

// Accept returns the selected item and closes the overlay. The caller owns
// the resulting text mutation (deleting the typed prefix, inserting the
// item's canonical text).
func (o *Overlay) Accept() (Item, bool) {
	it, ok := o.Selected()
	if !ok {
		return Item{}, false
	}
	o.state = StateAccepted
	return it, true
}

// Dismiss closes the overlay unconditionally.
func (o *Overlay) Dismiss() {
	if o.state == StateOpen {
		o.state = StateDismissed
	}
}
