package models

// ============================================================
// SVG Elements
// ============================================================

type SVGElement struct {
	ID       string
	RoomID   string // data-room-id, when the svg was produced by us
	Type     string // room type: kitchen, bedroom, ...
	Geometry interface{}
}

type RectGeometry struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type PathGeometry struct {
	D string
}

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox returns the axis-aligned box around points.
func BoundingBox(points []Point) (RectGeometry, bool) {
	if len(points) == 0 {
		return RectGeometry{}, false
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return RectGeometry{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// ============================================================
// Layout
// ============================================================

// Room is one rectangle of a layout, in the planner's save format.
type Room struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AttachedJSON string `json:"attached_json"`
}

func (r Room) Area() int {
	return r.Width * r.Height
}

type Layout struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CanvasWidth  int    `json:"canvas_width"`
	CanvasHeight int    `json:"canvas_height"`
	Rooms        []Room `json:"rooms"`
}

// Extent returns the drawing size: the canvas when known, otherwise the
// furthest room corner.
func (l Layout) Extent() (int, int) {
	if l.CanvasWidth > 0 && l.CanvasHeight > 0 {
		return l.CanvasWidth, l.CanvasHeight
	}
	w, h := 0, 0
	for _, r := range l.Rooms {
		w = max(w, r.X+r.Width)
		h = max(h, r.Y+r.Height)
	}
	if w == 0 || h == 0 {
		return 1000, 1000
	}
	return w, h
}

// TotalArea sums the area of every room.
func (l Layout) TotalArea() int {
	total := 0
	for _, r := range l.Rooms {
		total += r.Area()
	}
	return total
}
