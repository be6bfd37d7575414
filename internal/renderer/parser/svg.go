package parser

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"floorplanner/internal/renderer/models"
)

// ============================================================
// XML Structures
// ============================================================

type SVG struct {
	XMLName xml.Name `xml:"svg"`
	Group
}

type Group struct {
	ID     string  `xml:"id,attr"`
	Rects  []Rect  `xml:"rect"`
	Paths  []Path  `xml:"path"`
	Groups []Group `xml:"g"`
}

type Rect struct {
	ID       string  `xml:"id,attr"`
	RoomID   string  `xml:"data-room-id,attr"`
	RoomType string  `xml:"data-room-type,attr"`
	X        float64 `xml:"x,attr"`
	Y        float64 `xml:"y,attr"`
	Width    float64 `xml:"width,attr"`
	Height   float64 `xml:"height,attr"`
}

type Path struct {
	ID       string `xml:"id,attr"`
	RoomID   string `xml:"data-room-id,attr"`
	RoomType string `xml:"data-room-type,attr"`
	D        string `xml:"d,attr"`
}

// ============================================================
// Parser
// ============================================================

// ParseSVG извлекает комнаты (rect и path) из svg, включая вложенные <g>.
// Элементы, которые не распознаны как комнаты, пропускаются.
func ParseSVG(r io.Reader) ([]models.SVGElement, error) {
	var svg SVG
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&svg); err != nil {
		return nil, err
	}

	var elements []models.SVGElement
	collect(svg.Group, &elements)
	return elements, nil
}

func collect(g Group, elements *[]models.SVGElement) {
	for _, rect := range g.Rects {
		roomType := classifyRoom(rect.ID, rect.RoomType)
		if roomType == "" {
			continue
		}
		*elements = append(*elements, models.SVGElement{
			ID:     rect.ID,
			RoomID: rect.RoomID,
			Type:   roomType,
			Geometry: models.RectGeometry{
				X:      rect.X,
				Y:      rect.Y,
				Width:  rect.Width,
				Height: rect.Height,
			},
		})
	}

	for _, path := range g.Paths {
		roomType := classifyRoom(path.ID, path.RoomType)
		if roomType == "" {
			continue
		}
		*elements = append(*elements, models.SVGElement{
			ID:       path.ID,
			RoomID:   path.RoomID,
			Type:     roomType,
			Geometry: models.PathGeometry{D: path.D},
		})
	}

	for _, child := range g.Groups {
		collect(child, elements)
	}
}

var trailingIndex = regexp.MustCompile(`[_-]?\d+$`)

// classifyRoom returns the room type for an element, or "" when the element
// is not a room. An explicit data-room-type wins; otherwise the type is
// taken from ids like Room_kitchen_2, Kitchen_room or Hall_Room.
func classifyRoom(id, dataType string) string {
	if t := strings.TrimSpace(dataType); t != "" {
		return strings.ToLower(t)
	}

	var name string
	switch {
	case strings.HasPrefix(id, "Room_"):
		name = strings.TrimPrefix(id, "Room_")
	case strings.HasSuffix(id, "_room"):
		name = strings.TrimSuffix(id, "_room")
	case strings.HasSuffix(id, "_Room"):
		name = strings.TrimSuffix(id, "_Room")
	default:
		return ""
	}

	name = strings.ToLower(trailingIndex.ReplaceAllString(name, ""))
	if name == "" {
		return "room"
	}
	return name
}
