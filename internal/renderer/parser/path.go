package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"floorplanner/internal/renderer/models"
)

// ============================================================
// Path Parser
// ============================================================

var pathCommand = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// ParsePath парсит SVG path (M, L, H, V, Z и их относительные формы) в список
// точек. Повторные пары координат после M/L считаются продолжением линии.
func ParsePath(d string) ([]models.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	var points []models.Point
	var currentX, currentY float64

	for _, match := range pathCommand.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		coords := parseCoords(match[2])

		switch cmd {
		case "M", "L":
			for i := 0; i+1 < len(coords); i += 2 {
				currentX, currentY = coords[i], coords[i+1]
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "m", "l":
			for i := 0; i+1 < len(coords); i += 2 {
				currentX += coords[i]
				currentY += coords[i+1]
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "H":
			for _, v := range coords {
				currentX = v
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "h":
			for _, v := range coords {
				currentX += v
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "V":
			for _, v := range coords {
				currentY = v
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "v":
			for _, v := range coords {
				currentY += v
				points = append(points, models.Point{X: currentX, Y: currentY})
			}

		case "Z", "z":
			if len(points) > 0 {
				points = append(points, points[0])
				currentX, currentY = points[0].X, points[0].Y
			}
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("path has no points")
	}
	return points, nil
}

func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Разделитель: запятая или пробел
	s = strings.ReplaceAll(s, ",", " ")

	var coords []float64
	for _, part := range strings.Fields(s) {
		if val, err := strconv.ParseFloat(part, 64); err == nil {
			coords = append(coords, val)
		}
	}
	return coords
}
