package surface

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/portal"
)

// Terminal renders through a tcell screen. The caller owns screen lifecycle
// (Init and Fini); Terminal only draws.
type Terminal struct {
	screen tcell.Screen

	lines   []string
	curLine int
	curCol  int

	scrollRow int
	scrollCol int

	status string

	overlayRect     portal.Rect
	overlayLines    []string
	overlaySelected int
	overlayVisible  bool

	textStyle    tcell.Style
	gutterStyle  tcell.Style
	statusStyle  tcell.Style
	overlayStyle tcell.Style
	selectStyle  tcell.Style
}

// NewTerminal creates a terminal surface over an initialized screen.
func NewTerminal(screen tcell.Screen) *Terminal {
	base := tcell.StyleDefault
	return &Terminal{
		screen:          screen,
		lines:           []string{""},
		overlaySelected: -1,
		textStyle:       base,
		gutterStyle:     base.Foreground(tcell.ColorGray),
		statusStyle:     base.Reverse(true),
		overlayStyle:    base.Background(tcell.ColorDarkSlateGray),
		selectStyle:     base.Background(tcell.ColorDarkSlateGray).Reverse(true),
	}
}

func (t *Terminal) Lines() []string { return t.lines }

func (t *Terminal) SetLines(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	t.lines = lines
	t.clampCursor()
	t.scrollToCursor()
}

func (t *Terminal) CurrentLine() int   { return t.curLine }
func (t *Terminal) CurrentColumn() int { return t.curCol }

func (t *Terminal) SetCursor(line, col int) {
	t.curLine = line
	t.curCol = col
	t.clampCursor()
	t.scrollToCursor()
}

func (t *Terminal) clampCursor() {
	if t.curLine < 0 {
		t.curLine = 0
	}
	if t.curLine >= len(t.lines) {
		t.curLine = len(t.lines) - 1
	}
	if t.curCol < 0 {
		t.curCol = 0
	}
	if max := len([]rune(t.lines[t.curLine])); t.curCol > max {
		t.curCol = max
	}
}

// scrollToCursor adjusts offsets so the caret stays in view.
func (t *Terminal) scrollToCursor() {
	w, h := t.ViewSize()
	if w < 1 || h < 1 {
		return
	}
	if t.curLine < t.scrollRow {
		t.scrollRow = t.curLine
	}
	if t.curLine >= t.scrollRow+h {
		t.scrollRow = t.curLine - h + 1
	}
	if t.curCol < t.scrollCol {
		t.scrollCol = t.curCol
	}
	if t.curCol >= t.scrollCol+w {
		t.scrollCol = t.curCol - w + 1
	}
}

func (t *Terminal) ScrollOffsets() (int, int) { return t.scrollRow, t.scrollCol }

// GutterWidth sizes the gutter to the widest line number plus one space.
func (t *Terminal) GutterWidth() int {
	digits := 1
	for n := len(t.lines); n >= 10; n /= 10 {
		digits++
	}
	return digits + 1
}

func (t *Terminal) ViewSize() (int, int) {
	w, h := t.screen.Size()
	w -= t.GutterWidth()
	h-- // status line
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func (t *Terminal) SetStatus(text string) { t.status = text }

func (t *Terminal) SetOverlay(rect portal.Rect, lines []string, selected int) {
	t.overlayRect = rect
	t.overlayLines = lines
	t.overlaySelected = selected
	t.overlayVisible = true
}

func (t *Terminal) ClearOverlay() {
	t.overlayVisible = false
	t.overlayLines = nil
	t.overlaySelected = -1
}

// Invalidate redraws everything and flushes to the terminal.
func (t *Terminal) Invalidate() {
	t.screen.Clear()
	t.drawBuffer()
	t.drawStatus()
	if t.overlayVisible {
		t.drawOverlay()
	}
	t.showCursor()
	t.screen.Show()
}

func (t *Terminal) drawBuffer() {
	gutter := t.GutterWidth()
	w, h := t.ViewSize()

	for row := 0; row < h; row++ {
		lineIdx := t.scrollRow + row
		if lineIdx >= len(t.lines) {
			break
		}
		num := fmt.Sprintf("%*d ", gutter-1, lineIdx+1)
		t.print(0, row, num, t.gutterStyle)

		runes := []rune(t.lines[lineIdx])
		for x := 0; x < w; x++ {
			i := t.scrollCol + x
			if i >= len(runes) {
				break
			}
			t.screen.SetContent(gutter+x, row, runes[i], nil, t.textStyle)
		}
	}
}

func (t *Terminal) drawStatus() {
	w, h := t.screen.Size()
	row := h - 1
	if row < 0 {
		return
	}
	runes := []rune(t.status)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		t.screen.SetContent(x, row, r, nil, t.statusStyle)
	}
}

// drawOverlay paints the box interior row by row. The rect is already
// placed and clamped; rows show one item each, truncated to the width.
func (t *Terminal) drawOverlay() {
	r := t.overlayRect
	for row := 0; row < r.Height; row++ {
		style := t.overlayStyle
		if row == t.overlaySelected {
			style = t.selectStyle
		}
		var text string
		if row < len(t.overlayLines) {
			text = t.overlayLines[row]
		}
		runes := []rune(text)
		for x := 0; x < r.Width; x++ {
			c := ' '
			if x < len(runes) {
				c = runes[x]
			}
			t.screen.SetContent(r.X+x, r.Y+row, c, nil, style)
		}
	}
}

func (t *Terminal) showCursor() {
	p := Anchor(t, t.curLine, t.curCol)
	t.screen.ShowCursor(p.X, p.Y)
}

// print writes a string starting at (x, y), no wrapping.
func (t *Terminal) print(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}
