package overlay

import "testing"

func TestController_OpenForceClosesPrevious(t *testing.T) {
	c := NewController()

	first := New(KindCompletion, testItems(), 0, 4)
	if closed := c.Open(first); closed {
		t.Error("first Open reported a closed predecessor")
	}

	second := New(KindCompletion, testItems(), 1, 2)
	if closed := c.Open(second); !closed {
		t.Error("second Open did not close the first overlay")
	}

	if first.State() != StateDismissed {
		t.Errorf("first overlay state = %v, want dismissed", first.State())
	}
	if c.Active(KindCompletion) != second {
		t.Error("Active does not return the new overlay")
	}
}

func TestController_KindsIndependent(t *testing.T) {
	c := NewController()

	comp := New(KindCompletion, testItems(), 0, 4)
	tip := New(KindTooltip, []Item{{Label: "func foo()"}}, 0, 4)
	c.Open(comp)
	c.Open(tip)

	if c.Active(KindCompletion) != comp || c.Active(KindTooltip) != tip {
		t.Error("overlays of different kinds must coexist")
	}
}

func TestController_DismissIdempotent(t *testing.T) {
	c := NewController()
	c.Open(New(KindCompletion, testItems(), 0, 4))

	c.Dismiss(KindCompletion)
	c.Dismiss(KindCompletion)

	if c.Active(KindCompletion) != nil {
		t.Error("Active returned a dismissed overlay")
	}
	if c.AnyOpen() {
		t.Error("AnyOpen = true after dismiss")
	}
}

func TestController_CursorMovedRules(t *testing.T) {
	tests := []struct {
		name      string
		line, col int
		dismissed bool
	}{
		{"same line past trigger", 3, 10, false},
		{"same line at trigger", 3, 5, false},
		{"backward past trigger col", 3, 4, true},
		{"different line", 4, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			c.Open(New(KindCompletion, testItems(), 3, 5))

			c.CursorMoved(tt.line, tt.col)

			open := c.Active(KindCompletion) != nil
			if open == tt.dismissed {
				t.Errorf("after CursorMoved(%d,%d): open = %v, want dismissed = %v",
					tt.line, tt.col, open, tt.dismissed)
			}
		})
	}
}

func TestController_TooltipDismissesOnAnyMove(t *testing.T) {
	c := NewController()
	c.Open(New(KindTooltip, []Item{{Label: "doc"}}, 3, 5))

	c.CursorMoved(3, 6)

	if c.Active(KindTooltip) != nil {
		t.Error("tooltip survived cursor movement")
	}
}

func TestController_DismissAll(t *testing.T) {
	c := NewController()
	c.Open(New(KindCompletion, testItems(), 0, 0))
	c.Open(New(KindLocations, []Item{{Label: "main.go:10"}}, 0, 0))

	c.DismissAll()

	if c.AnyOpen() {
		t.Error("AnyOpen = true after DismissAll")
	}
}
