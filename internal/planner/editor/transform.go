package editor

import (
	"fmt"

	"floorplanner/internal/geometry"
)

// ============================================================
// Resize Handles
// ============================================================

type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "tl"
	HandleTopRight    Handle = "tr"
	HandleBottomLeft  Handle = "bl"
	HandleBottomRight Handle = "br"
)

// ParseHandle принимает имена углов, которые присылает браузер.
func ParseHandle(s string) (Handle, error) {
	switch h := Handle(s); h {
	case HandleNone, HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return h, nil
	default:
		return HandleNone, fmt.Errorf("%w: %q", ErrBadHandle, s)
	}
}

func (h Handle) movesLeft() bool { return h == HandleTopLeft || h == HandleBottomLeft }
func (h Handle) movesTop() bool  { return h == HandleTopLeft || h == HandleTopRight }

// ============================================================
// Pure Transforms
// ============================================================

// DragTo moves anchor by the pointer delta and runs the result through
// grid snap, magnetic alignment, canvas bounds and collision resolution.
func DragTo(anchor geometry.Rect, dx, dy float64, others []geometry.Rect, b geometry.Bounds) geometry.Rect {
	candidate := geometry.Rect{
		X: geometry.SnapToGrid(float64(anchor.X) + geometry.Sanitize(dx)),
		Y: geometry.SnapToGrid(float64(anchor.Y) + geometry.Sanitize(dy)),
		W: anchor.W,
		H: anchor.H,
	}
	return geometry.Settle(candidate, others, b)
}

// ResizeTo grows or shrinks anchor from the given corner. Width and height
// are floored at the minimum size before snapping. Left and top handles keep
// the opposite edge where it was at the start of the resize.
func ResizeTo(anchor geometry.Rect, h Handle, dx, dy float64, others []geometry.Rect, b geometry.Bounds) geometry.Rect {
	dx, dy = geometry.Sanitize(dx), geometry.Sanitize(dy)

	w, hh := float64(anchor.W), float64(anchor.H)
	if h.movesLeft() {
		w -= dx
	} else {
		w += dx
	}
	if h.movesTop() {
		hh -= dy
	} else {
		hh += dy
	}

	candidate := geometry.Rect{
		X: anchor.X,
		Y: anchor.Y,
		W: geometry.SnapToGrid(max(geometry.MinWidth, w)),
		H: geometry.SnapToGrid(max(geometry.MinHeight, hh)),
	}
	if h.movesLeft() {
		candidate.X = geometry.SnapToGrid(float64(anchor.Right() - candidate.W))
	}
	if h.movesTop() {
		candidate.Y = geometry.SnapToGrid(float64(anchor.Bottom() - candidate.H))
	}
	return geometry.Settle(candidate, others, b)
}
