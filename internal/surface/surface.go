package surface

import "github.com/dshills/quill/internal/portal"

// Surface is the presentation layer the coordinator draws through.
//
// Thread-safety: none. Every method must be called from the drain-loop
// goroutine.
type Surface interface {
	// Lines returns the displayed buffer lines. Callers must not mutate
	// the returned slice.
	Lines() []string

	// SetLines replaces the displayed buffer content.
	SetLines(lines []string)

	// CurrentLine returns the 0-based caret line.
	CurrentLine() int

	// CurrentColumn returns the 0-based caret column in runes.
	CurrentColumn() int

	// SetCursor moves the caret, clamping to the buffer.
	SetCursor(line, col int)

	// ScrollOffsets returns the first visible line and column.
	ScrollOffsets() (row, col int)

	// GutterWidth returns the width of the line-number gutter in cells.
	GutterWidth() int

	// ViewSize returns the text area size in cells, excluding the gutter
	// and the status line.
	ViewSize() (width, height int)

	// SetStatus replaces the status line text.
	SetStatus(text string)

	// SetOverlay draws a bordered box at rect showing lines, with the
	// selected row highlighted. A negative selected highlights nothing.
	SetOverlay(rect portal.Rect, lines []string, selected int)

	// ClearOverlay removes any overlay box.
	ClearOverlay()

	// Invalidate flushes pending drawing to the screen.
	Invalidate()
}

// Viewport returns the screen rectangle overlays may occupy: the text area
// in screen coordinates, after the gutter.
func Viewport(s Surface) portal.Rect {
	w, h := s.ViewSize()
	return portal.Rect{X: s.GutterWidth(), Y: 0, Width: w, Height: h}
}

// Anchor converts a buffer position to the screen cell it occupies, given
// the surface's scroll offsets and gutter. Positions scrolled off screen
// still map, possibly outside the viewport; Place clamps the result.
func Anchor(s Surface, line, col int) portal.Point {
	row, scrollCol := s.ScrollOffsets()
	return portal.Point{
		X: s.GutterWidth() + col - scrollCol,
		Y: line - row,
	}
}
