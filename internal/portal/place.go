package portal

// MinHeight is the floor below which a popup is never shrunk; a shorter box
// is not usable.
const MinHeight = 3

// Point is a screen cell coordinate.
type Point struct {
	X int
	Y int
}

// Size is a desired popup extent in cells.
type Size struct {
	Width  int
	Height int
}

// Rect is a placed rectangle. For results of Place it lies fully inside the
// viewport: X >= viewport.X, X+Width <= viewport right edge, same for Y.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Contains returns true if the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Place computes a rectangle for a popup anchored at anchor, fully inside
// viewport.
//
// The preferred side (below the anchor row, or above when preferAbove) is
// tried first; if the full desired height fits there it is used unshifted.
// Otherwise the opposite side is tried. If neither side offers full room the
// side with more room wins and the height shrinks to what fits, but never
// below MinHeight. Width is capped to the viewport before the horizontal
// clamp, so the right edge never exceeds the viewport's right edge and the
// left edge never precedes its left edge.
func Place(anchor Point, desired Size, viewport Rect, preferAbove bool) Rect {
	width := desired.Width
	if width > viewport.Width {
		width = viewport.Width
	}
	if width < 1 {
		width = 1
	}

	height := desired.Height
	if height < 1 {
		height = 1
	}

	roomBelow := viewport.Bottom() - (anchor.Y + 1)
	roomAbove := anchor.Y - viewport.Y
	if roomBelow < 0 {
		roomBelow = 0
	}
	if roomAbove < 0 {
		roomAbove = 0
	}

	below := !preferAbove
	switch {
	case below && height <= roomBelow:
		// Preferred side fits.
	case below && height <= roomAbove:
		below = false
	case !below && height <= roomAbove:
		// Preferred side fits.
	case !below && height <= roomBelow:
		below = true
	default:
		// Neither side has full room: take the roomier side and shrink.
		below = roomBelow >= roomAbove
		room := roomAbove
		if below {
			room = roomBelow
		}
		if height > room {
			height = room
		}
		if height < MinHeight {
			height = MinHeight
		}
	}

	var y int
	if below {
		y = anchor.Y + 1
	} else {
		y = anchor.Y - height
	}
	// The minimum-height floor can overflow a cramped side; clamp the
	// vertical position back into the viewport.
	if y+height > viewport.Bottom() {
		y = viewport.Bottom() - height
	}
	if y < viewport.Y {
		y = viewport.Y
	}
	if height > viewport.Height {
		height = viewport.Height
	}

	x := anchor.X
	if x+width > viewport.Right() {
		x = viewport.Right() - width
	}
	if x < viewport.X {
		x = viewport.X
	}

	return Rect{X: x, Y: y, Width: width, Height: height}
}
