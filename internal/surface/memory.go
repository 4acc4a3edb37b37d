package surface

import "github.com/dshills/quill/internal/portal"

// Memory is an in-memory Surface for tests and headless operation. It
// records every mutation in exported-by-accessor fields and never touches a
// terminal.
type Memory struct {
	lines   []string
	curLine int
	curCol  int

	scrollRow int
	scrollCol int
	gutter    int
	viewW     int
	viewH     int

	status string

	overlayRect     portal.Rect
	overlayLines    []string
	overlaySelected int
	overlayVisible  bool

	invalidations int
}

// NewMemory creates a memory surface with the given text area size.
func NewMemory(viewW, viewH int) *Memory {
	return &Memory{
		lines:           []string{""},
		gutter:          4,
		viewW:           viewW,
		viewH:           viewH,
		overlaySelected: -1,
	}
}

func (m *Memory) Lines() []string { return m.lines }

func (m *Memory) SetLines(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	m.lines = lines
	m.clampCursor()
}

func (m *Memory) CurrentLine() int   { return m.curLine }
func (m *Memory) CurrentColumn() int { return m.curCol }

func (m *Memory) SetCursor(line, col int) {
	m.curLine = line
	m.curCol = col
	m.clampCursor()
}

func (m *Memory) clampCursor() {
	if m.curLine < 0 {
		m.curLine = 0
	}
	if m.curLine >= len(m.lines) {
		m.curLine = len(m.lines) - 1
	}
	if m.curCol < 0 {
		m.curCol = 0
	}
	if max := len([]rune(m.lines[m.curLine])); m.curCol > max {
		m.curCol = max
	}
}

func (m *Memory) ScrollOffsets() (int, int) { return m.scrollRow, m.scrollCol }

// SetScrollOffsets positions the view for tests.
func (m *Memory) SetScrollOffsets(row, col int) {
	m.scrollRow = row
	m.scrollCol = col
}

func (m *Memory) GutterWidth() int { return m.gutter }

func (m *Memory) ViewSize() (int, int) { return m.viewW, m.viewH }

func (m *Memory) SetStatus(text string) { m.status = text }

// Status returns the last status line text.
func (m *Memory) Status() string { return m.status }

func (m *Memory) SetOverlay(rect portal.Rect, lines []string, selected int) {
	m.overlayRect = rect
	m.overlayLines = lines
	m.overlaySelected = selected
	m.overlayVisible = true
}

func (m *Memory) ClearOverlay() {
	m.overlayVisible = false
	m.overlayLines = nil
	m.overlaySelected = -1
}

// OverlayVisible returns true if an overlay box is showing.
func (m *Memory) OverlayVisible() bool { return m.overlayVisible }

// OverlayRect returns the last overlay rectangle.
func (m *Memory) OverlayRect() portal.Rect { return m.overlayRect }

// OverlayLines returns the last overlay content.
func (m *Memory) OverlayLines() []string { return m.overlayLines }

// OverlaySelected returns the last highlighted overlay row.
func (m *Memory) OverlaySelected() int { return m.overlaySelected }

func (m *Memory) Invalidate() { m.invalidations++ }

// Invalidations returns how many times Invalidate was called.
func (m *Memory) Invalidations() int { return m.invalidations }
