package parser

import (
	"fmt"
	"io"
	"math"
	"os"

	"floorplanner/internal/renderer/models"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// ============================================================
// DXF Parser
// ============================================================

const joinTolerance = 0.01

type segment struct {
	start models.Point
	end   models.Point
}

// ParseDXF reads closed outlines (LWPOLYLINE or chains of LINE) and returns
// their bounding boxes in screen coordinates: y grows downwards from the top
// of the drawing. An outline covering the whole drawing is treated as the
// canvas frame and dropped when other outlines exist.
func ParseDXF(r io.Reader) ([]models.RectGeometry, error) {
	path, cleanup, err := spool(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open DXF: %w", err)
	}

	var outlines [][]models.Point
	var segments []segment

	for _, ent := range drawing.Entities() {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			var pts []models.Point
			for _, v := range e.Vertices {
				if len(v) < 2 {
					continue
				}
				pts = append(pts, models.Point{X: v[0], Y: v[1]})
			}
			if len(pts) >= 3 {
				outlines = append(outlines, pts)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: models.Point{X: e.Start[0], Y: e.Start[1]},
				end:   models.Point{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	outlines = append(outlines, chainSegments(segments)...)
	if len(outlines) == 0 {
		return nil, fmt.Errorf("DXF contains no closed outlines")
	}

	boxes := make([]models.RectGeometry, 0, len(outlines))
	for _, o := range outlines {
		box, _ := models.BoundingBox(o)
		boxes = append(boxes, box)
	}

	extent := boxes[0]
	for _, b := range boxes[1:] {
		extent = union(extent, b)
	}

	top := extent.Y + extent.Height
	result := make([]models.RectGeometry, 0, len(boxes))
	for _, b := range boxes {
		if len(boxes) > 1 && sameBox(b, extent) {
			continue
		}
		result = append(result, models.RectGeometry{
			X:      b.X,
			Y:      top - (b.Y + b.Height),
			Width:  b.Width,
			Height: b.Height,
		})
	}
	return result, nil
}

// chainSegments joins loose LINE segments end to end. Chains that do not
// come back to their first point are discarded.
func chainSegments(segments []segment) [][]models.Point {
	used := make([]bool, len(segments))
	var outlines [][]models.Point

	for i := range segments {
		if used[i] {
			continue
		}
		used[i] = true
		chain := []models.Point{segments[i].start, segments[i].end}

		for !near(chain[0], chain[len(chain)-1]) {
			tail := chain[len(chain)-1]
			next := -1
			for j := range segments {
				if used[j] {
					continue
				}
				if near(segments[j].start, tail) {
					chain = append(chain, segments[j].end)
					next = j
					break
				}
				if near(segments[j].end, tail) {
					chain = append(chain, segments[j].start)
					next = j
					break
				}
			}
			if next < 0 {
				break
			}
			used[next] = true
		}

		if len(chain) >= 4 && near(chain[0], chain[len(chain)-1]) {
			outlines = append(outlines, chain)
		}
	}
	return outlines
}

func near(a, b models.Point) bool {
	return math.Abs(a.X-b.X) <= joinTolerance && math.Abs(a.Y-b.Y) <= joinTolerance
}

func union(a, b models.RectGeometry) models.RectGeometry {
	minX := math.Min(a.X, b.X)
	minY := math.Min(a.Y, b.Y)
	maxX := math.Max(a.X+a.Width, b.X+b.Width)
	maxY := math.Max(a.Y+a.Height, b.Y+b.Height)
	return models.RectGeometry{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func sameBox(a, b models.RectGeometry) bool {
	return near(models.Point{X: a.X, Y: a.Y}, models.Point{X: b.X, Y: b.Y}) &&
		near(models.Point{X: a.Width, Y: a.Height}, models.Point{X: b.Width, Y: b.Height})
}

// spool copies r into a temporary file; the dxf reader only opens paths.
func spool(r io.Reader) (string, func(), error) {
	f, err := os.CreateTemp("", "plan-*.dxf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("spool DXF: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
