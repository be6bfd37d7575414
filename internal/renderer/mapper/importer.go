package mapper

import (
	"fmt"
	"io"
	"math"

	"floorplanner/internal/geometry"
	"floorplanner/internal/renderer/models"
	"floorplanner/internal/renderer/parser"
)

// ============================================================
// Importer
// ============================================================

type Importer struct{}

func NewImporter() *Importer {
	return &Importer{}
}

// Import reads an svg plan and returns its rooms on the editor grid.
func (i *Importer) Import(r io.Reader) ([]models.Room, error) {
	elements, err := parser.ParseSVG(r)
	if err != nil {
		return nil, fmt.Errorf("parse SVG: %w", err)
	}

	rooms := make([]models.Room, 0, len(elements))
	for _, elem := range elements {
		box, err := boxOf(elem)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", elem.ID, err)
		}
		rooms = append(rooms, FromBox(elem.RoomID, elem.Type, box))
	}
	return rooms, nil
}

func boxOf(elem models.SVGElement) (models.RectGeometry, error) {
	switch g := elem.Geometry.(type) {
	case models.RectGeometry:
		return g, nil
	case models.PathGeometry:
		points, err := parser.ParsePath(g.D)
		if err != nil {
			return models.RectGeometry{}, err
		}
		box, _ := models.BoundingBox(points)
		return box, nil
	default:
		return models.RectGeometry{}, fmt.Errorf("unsupported geometry %T", elem.Geometry)
	}
}

// FromBox snaps a bounding box to the grid and lifts it to the minimum
// room size. Negative origins are moved to zero.
func FromBox(id, roomType string, box models.RectGeometry) models.Room {
	if roomType == "" {
		roomType = "room"
	}
	w, h := geometry.NormalizeSize(
		int(math.Round(geometry.Sanitize(box.Width))),
		int(math.Round(geometry.Sanitize(box.Height))),
	)
	return models.Room{
		ID:     id,
		Type:   roomType,
		X:      max(0, geometry.SnapToGrid(box.X)),
		Y:      max(0, geometry.SnapToGrid(box.Y)),
		Width:  w,
		Height: h,
	}
}

// ImportDXF reads closed outlines from a DXF drawing as rooms of type "room".
func (i *Importer) ImportDXF(r io.Reader) ([]models.Room, error) {
	boxes, err := parser.ParseDXF(r)
	if err != nil {
		return nil, fmt.Errorf("parse DXF: %w", err)
	}

	rooms := make([]models.Room, 0, len(boxes))
	for _, box := range boxes {
		rooms = append(rooms, FromBox("", "room", box))
	}
	return rooms, nil
}
