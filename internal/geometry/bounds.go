package geometry

// ============================================================
// Canvas bounds
// ============================================================

// ClampToCanvas keeps the top-left corner of r inside
// [0, W-w-margin] x [0, H-h-margin]. A rectangle that does not fit is pinned
// to 0 on that axis. Width and height are left alone.
func ClampToCanvas(r Rect, b Bounds) Rect {
	maxX, maxY := b.MaxOrigin(r)
	r.X = max(0, min(r.X, maxX))
	r.Y = max(0, min(r.Y, maxY))
	return r
}

// ResolveCanvasBounds clamps r to the canvas. When the clamp had to move a
// coordinate onto the margin line it is floored to the grid so the room
// stays grid aligned.
func ResolveCanvasBounds(r Rect, b Bounds) Rect {
	c := ClampToCanvas(r, b)
	if c.X != r.X {
		c.X = max(0, floorToGrid(c.X))
	}
	if c.Y != r.Y {
		c.Y = max(0, floorToGrid(c.Y))
	}
	return c
}

// Settle runs the post-snap pipeline used on every pointer move:
// magnetic alignment, canvas bounds, then collision resolution.
func Settle(r Rect, others []Rect, b Bounds) Rect {
	r = MagneticAlign(r, others)
	r = ResolveCanvasBounds(r, b)
	return ResolveCollision(r, others)
}

// FreeSpot scans grid positions row by row and returns the first placement
// of r that is inside b and clear of others.
func FreeSpot(r Rect, others []Rect, b Bounds) (Rect, bool) {
	maxX, maxY := b.MaxOrigin(r)
	for y := 0; y <= maxY; y += GridSize {
		for x := 0; x <= maxX; x += GridSize {
			c := Rect{X: x, Y: y, W: r.W, H: r.H}
			if b.Contains(c) && !CollidesAny(c, others) {
				return c, true
			}
		}
	}
	return r, false
}
