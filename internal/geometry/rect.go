// Package geometry holds the pure rectangle math behind the floor planner:
// grid snapping, overlap tests, canvas clamping, magnetic alignment and
// collision resolution. Nothing in here keeps state.
package geometry

import "math"

// ============================================================
// Constants
// ============================================================

const (
	GridSize     = 20 // grid pitch in px
	MagneticDist = 16 // max distance at which a feature snaps to a neighbour
	MinWidth     = 40
	MinHeight    = 30
	CanvasMargin = 6 // kept free on the right and bottom canvas edges
)

// ============================================================
// Rectangle & Bounds
// ============================================================

// Rect is an axis-aligned rectangle in integer canvas pixels.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"width"`
	H int `json:"height"`
}

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

func (r Rect) CenterX() float64 { return float64(r.X) + float64(r.W)/2 }
func (r Rect) CenterY() float64 { return float64(r.Y) + float64(r.H)/2 }

// Area returns W*H, or 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Bounds is the editable canvas area.
type Bounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MaxOrigin returns the largest valid top-left corner for r inside b.
func (b Bounds) MaxOrigin(r Rect) (int, int) {
	w := max(r.W, 0)
	h := max(r.H, 0)
	return max(0, b.Width-w-CanvasMargin), max(0, b.Height-h-CanvasMargin)
}

// Fits reports whether r sits inside b the way ClampToCanvas would leave it.
// A rectangle larger than the canvas fits only when pinned to the origin.
func (b Bounds) Fits(r Rect) bool {
	maxX, maxY := b.MaxOrigin(r)
	return r.X >= 0 && r.Y >= 0 && r.X <= maxX && r.Y <= maxY
}

// Contains reports whether r lies completely inside b, margin included.
func (b Bounds) Contains(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.Right()+CanvasMargin <= b.Width &&
		r.Bottom()+CanvasMargin <= b.Height
}

// ============================================================
// Grid
// ============================================================

// SnapToGrid rounds n to the nearest multiple of GridSize. Halves round up,
// so -30 snaps to -20 and 30 snaps to 40.
func SnapToGrid(n float64) int {
	return roundHalfUp(Sanitize(n)/GridSize) * GridSize
}

// SnapRect snaps position and size of r to the grid.
func SnapRect(r Rect) Rect {
	return Rect{
		X: SnapToGrid(float64(r.X)),
		Y: SnapToGrid(float64(r.Y)),
		W: SnapToGrid(float64(r.W)),
		H: SnapToGrid(float64(r.H)),
	}
}

// NormalizeSize floors a width/height pair at the minimum room size and then
// snaps both to the grid.
func NormalizeSize(w, h int) (int, int) {
	return SnapToGrid(float64(max(MinWidth, w))), SnapToGrid(float64(max(MinHeight, h)))
}

// IsGridAligned reports whether every field of r is a multiple of GridSize.
func IsGridAligned(r Rect) bool {
	return r.X%GridSize == 0 && r.Y%GridSize == 0 && r.W%GridSize == 0 && r.H%GridSize == 0
}

func floorToGrid(n int) int {
	return int(math.Floor(float64(n)/GridSize)) * GridSize
}

// ============================================================
// Helpers
// ============================================================

// Sanitize maps NaN and infinities to 0 so malformed pointer input never
// reaches the engine.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
