package geometry

import "math"

// ============================================================
// Magnetic alignment
// ============================================================

// MagneticAlign moves r (never resizes it) onto nearby features of the other
// rectangles. Per neighbour the checks run in a fixed order: abutting edges,
// matching edges, then centres. Every comparison uses the incoming r, and a
// hit simply overwrites the coordinate for its axis, so later checks and
// later neighbours win. The result is snapped back to the grid.
func MagneticAlign(r Rect, others []Rect) Rect {
	x, y := r.X, r.Y
	cx, cy := r.CenterX(), r.CenterY()

	for _, o := range others {
		// abutting edges
		if absInt(r.X-o.Right()) <= MagneticDist {
			x = o.Right()
		}
		if absInt(r.Right()-o.X) <= MagneticDist {
			x = o.X - r.W
		}
		if absInt(r.Y-o.Bottom()) <= MagneticDist {
			y = o.Bottom()
		}
		if absInt(r.Bottom()-o.Y) <= MagneticDist {
			y = o.Y - r.H
		}

		// matching edges
		if absInt(r.X-o.X) <= MagneticDist {
			x = o.X
		}
		if absInt(r.Right()-o.Right()) <= MagneticDist {
			x = o.Right() - r.W
		}
		if absInt(r.Y-o.Y) <= MagneticDist {
			y = o.Y
		}
		if absInt(r.Bottom()-o.Bottom()) <= MagneticDist {
			y = o.Bottom() - r.H
		}

		// centres
		if math.Abs(cx-o.CenterX()) <= MagneticDist {
			x = roundHalfUp(o.CenterX() - float64(r.W)/2)
		}
		if math.Abs(cy-o.CenterY()) <= MagneticDist {
			y = roundHalfUp(o.CenterY() - float64(r.H)/2)
		}
	}

	return Rect{
		X: SnapToGrid(float64(x)),
		Y: SnapToGrid(float64(y)),
		W: r.W,
		H: r.H,
	}
}
