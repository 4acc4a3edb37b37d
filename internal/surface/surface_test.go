package surface

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/portal"
)

func TestMemoryCursorClamping(t *testing.T) {
	m := NewMemory(80, 24)
	m.SetLines([]string{"hello", "wo"})

	tests := []struct {
		name               string
		line, col          int
		wantLine, wantCol  int
	}{
		{"in bounds", 0, 3, 0, 3},
		{"column past end", 1, 10, 1, 2},
		{"line past end", 5, 0, 1, 0},
		{"negative", -1, -1, 0, 0},
		{"end of line allowed", 0, 5, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetCursor(tt.line, tt.col)
			if m.CurrentLine() != tt.wantLine || m.CurrentColumn() != tt.wantCol {
				t.Errorf("cursor = (%d, %d), want (%d, %d)",
					m.CurrentLine(), m.CurrentColumn(), tt.wantLine, tt.wantCol)
			}
		})
	}
}

func TestMemoryEmptyLinesNormalized(t *testing.T) {
	m := NewMemory(80, 24)
	m.SetLines(nil)
	if len(m.Lines()) != 1 || m.Lines()[0] != "" {
		t.Errorf("empty buffer should hold one empty line, got %q", m.Lines())
	}
}

func TestMemoryOverlayLifecycle(t *testing.T) {
	m := NewMemory(80, 24)

	rect := portal.Rect{X: 10, Y: 5, Width: 20, Height: 4}
	m.SetOverlay(rect, []string{"one", "two"}, 1)
	if !m.OverlayVisible() {
		t.Fatal("overlay should be visible after SetOverlay")
	}
	if m.OverlayRect() != rect || m.OverlaySelected() != 1 {
		t.Errorf("overlay state = %+v sel=%d", m.OverlayRect(), m.OverlaySelected())
	}

	m.ClearOverlay()
	if m.OverlayVisible() {
		t.Error("overlay should be hidden after ClearOverlay")
	}
}

func TestAnchorAccountsForScrollAndGutter(t *testing.T) {
	m := NewMemory(80, 24)
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "some text that is long enough to scroll horizontally"
	}
	m.SetLines(lines)
	m.SetScrollOffsets(10, 3)

	p := Anchor(m, 15, 8)
	want := portal.Point{X: m.GutterWidth() + 8 - 3, Y: 15 - 10}
	if p != want {
		t.Errorf("Anchor = %+v, want %+v", p, want)
	}
}

func TestViewportExcludesGutter(t *testing.T) {
	m := NewMemory(80, 24)
	vp := Viewport(m)
	want := portal.Rect{X: m.GutterWidth(), Y: 0, Width: 80, Height: 24}
	if vp != want {
		t.Errorf("Viewport = %+v, want %+v", vp, want)
	}
}

func newSimTerminal(t *testing.T, w, h int) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim init: %v", err)
	}
	sim.SetSize(w, h)
	t.Cleanup(sim.Fini)
	return NewTerminal(sim), sim
}

// cellRune reads the primary rune at a screen cell.
func cellRune(sim tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := sim.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func TestTerminalDrawsBufferAndStatus(t *testing.T) {
	term, sim := newSimTerminal(t, 40, 10)
	term.SetLines([]string{"hello", "world"})
	term.SetStatus("ready")
	term.Invalidate()

	gutter := term.GutterWidth()
	if got := cellRune(sim, gutter, 0); got != 'h' {
		t.Errorf("first text cell = %q, want 'h'", got)
	}
	if got := cellRune(sim, gutter, 1); got != 'w' {
		t.Errorf("second line cell = %q, want 'w'", got)
	}
	if got := cellRune(sim, 0, 9); got != 'r' {
		t.Errorf("status cell = %q, want 'r'", got)
	}
}

func TestTerminalDrawsOverlay(t *testing.T) {
	term, sim := newSimTerminal(t, 40, 10)
	term.SetLines([]string{"foo.ba"})
	term.SetOverlay(portal.Rect{X: 5, Y: 2, Width: 10, Height: 2}, []string{"bar", "baz"}, 0)
	term.Invalidate()

	if got := cellRune(sim, 5, 2); got != 'b' {
		t.Errorf("overlay cell = %q, want 'b'", got)
	}
	if got := cellRune(sim, 6, 3); got != 'a' {
		t.Errorf("overlay second row cell = %q, want 'a'", got)
	}

	term.ClearOverlay()
	term.Invalidate()
	if got := cellRune(sim, 5, 2); got == 'b' {
		t.Error("overlay should be gone after ClearOverlay")
	}
}

func TestTerminalScrollFollowsCursor(t *testing.T) {
	term, _ := newSimTerminal(t, 40, 10)
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "x"
	}
	term.SetLines(lines)

	term.SetCursor(50, 0)
	row, _ := term.ScrollOffsets()
	_, h := term.ViewSize()
	if 50 < row || 50 >= row+h {
		t.Errorf("cursor line 50 not in view: scrollRow=%d height=%d", row, h)
	}

	term.SetCursor(0, 0)
	row, _ = term.ScrollOffsets()
	if row != 0 {
		t.Errorf("scrollRow = %d after moving to top, want 0", row)
	}
}

func TestTerminalGutterWidth(t *testing.T) {
	term, _ := newSimTerminal(t, 40, 10)

	term.SetLines(make([]string, 9))
	if got := term.GutterWidth(); got != 2 {
		t.Errorf("gutter for 9 lines = %d, want 2", got)
	}
	term.SetLines(make([]string, 100))
	if got := term.GutterWidth(); got != 4 {
		t.Errorf("gutter for 100 lines = %d, want 4", got)
	}
}
