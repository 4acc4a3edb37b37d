package overlay

// Controller enforces the one-live-overlay-per-kind invariant and applies
// the cursor-movement dismissal rules.
//
// Not safe for concurrent use: the controller and every overlay it holds are
// owned by the drain-loop goroutine.
type Controller struct {
	active map[Kind]*Overlay
}

// NewController creates an empty controller.
func NewController() *Controller {
	return &Controller{
		active: make(map[Kind]*Overlay),
	}
}

// Open installs an overlay, force-closing any live overlay of the same kind
// first (no stacking). Returns true if a previous overlay was closed.
func (c *Controller) Open(o *Overlay) bool {
	closed := false
	if prev, ok := c.active[o.kind]; ok && prev.IsOpen() {
		prev.Dismiss()
		closed = true
	}
	c.active[o.kind] = o
	return closed
}

// Active returns the live overlay of the given kind, or nil.
func (c *Controller) Active(kind Kind) *Overlay {
	o, ok := c.active[kind]
	if !ok || !o.IsOpen() {
		return nil
	}
	return o
}

// AnyOpen returns true if any overlay is live.
func (c *Controller) AnyOpen() bool {
	for _, o := range c.active {
		if o.IsOpen() {
			return true
		}
	}
	return false
}

// Dismiss closes the overlay of the given kind, if live. Idempotent.
func (c *Controller) Dismiss(kind Kind) {
	if o, ok := c.active[kind]; ok {
		o.Dismiss()
		delete(c.active, kind)
	}
}

// DismissAll closes every live overlay. Used when focus leaves the editing
// surface.
func (c *Controller) DismissAll() {
	for kind, o := range c.active {
		o.Dismiss()
		delete(c.active, kind)
	}
}

// CursorMoved applies the positional dismissal rules: an overlay closes when
// the caret leaves its trigger line or moves backward past its trigger
// column. Tooltips close on any movement.
func (c *Controller) CursorMoved(line, col int) {
	for kind, o := range c.active {
		if !o.IsOpen() {
			delete(c.active, kind)
			continue
		}
		switch kind {
		case KindTooltip:
			o.Dismiss()
			delete(c.active, kind)
		default:
			if line != o.triggerLine || col < o.triggerCol {
				o.Dismiss()
				delete(c.active, kind)
			}
		}
	}
}
