package geometry

// ============================================================
// Collision
// ============================================================

// IsColliding is a strict AABB overlap test. Rectangles that only share an
// edge do not collide.
func IsColliding(a, b Rect) bool {
	return !(a.Right() <= b.X ||
		a.X >= b.Right() ||
		a.Bottom() <= b.Y ||
		a.Y >= b.Bottom())
}

// CollidesAny reports whether r overlaps any rectangle in others.
func CollidesAny(r Rect, others []Rect) bool {
	for _, o := range others {
		if IsColliding(r, o) {
			return true
		}
	}
	return false
}

type side int

const (
	sideLeft side = iota
	sideRight
	sideTop
	sideBottom
)

// ResolveCollision pushes r out of every neighbour it overlaps, one neighbour
// at a time in slice order. For each hit the smallest positive overlap wins
// (ties go left, right, top, bottom) and r is placed flush against that edge.
// The corrected rectangle is carried into the next check; there is no second
// pass, so a later push may reintroduce an earlier overlap.
func ResolveCollision(r Rect, others []Rect) Rect {
	for _, o := range others {
		if !IsColliding(r, o) {
			continue
		}

		overlaps := [4]int{
			sideLeft:   r.Right() - o.X,
			sideRight:  o.Right() - r.X,
			sideTop:    r.Bottom() - o.Y,
			sideBottom: o.Bottom() - r.Y,
		}

		best := side(-1)
		for s, v := range overlaps {
			if v <= 0 {
				continue
			}
			if best < 0 || v < overlaps[best] {
				best = side(s)
			}
		}

		switch best {
		case sideLeft:
			r.X = o.X - r.W
		case sideRight:
			r.X = o.Right()
		case sideTop:
			r.Y = o.Y - r.H
		case sideBottom:
			r.Y = o.Bottom()
		}
	}
	return r
}
