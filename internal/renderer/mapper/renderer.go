package mapper

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"floorplanner/internal/geometry"
	"floorplanner/internal/renderer/models"
)

// ============================================================
// Renderer
// ============================================================

type Renderer struct {
	grid bool
}

type RendererOption func(*Renderer)

// WithGrid draws the editor grid behind the rooms.
func WithGrid() RendererOption {
	return func(r *Renderer) { r.grid = true }
}

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render собирает SVG из сохранённой раскладки. Комнаты получают id вида
// Room_<id> и атрибуты data-room-*, поэтому результат читается обратно
// через Importer без потерь.
func (r *Renderer) Render(layout *models.Layout) (string, error) {
	if layout == nil {
		return "", fmt.Errorf("layout is nil")
	}

	width, height := layout.Extent()

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height))
	builder.WriteString("\n")

	if r.grid {
		builder.WriteString(r.renderGrid(width, height))
	}

	builder.WriteString(`  <g id="rooms">` + "\n")
	for _, room := range layout.Rooms {
		for _, elem := range r.renderRoom(room) {
			builder.WriteString("    ")
			builder.WriteString(elem)
			builder.WriteString("\n")
		}
	}
	builder.WriteString("  </g>\n")

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Elements
// ============================================================

func (r *Renderer) renderGrid(width, height int) string {
	g := geometry.GridSize
	return fmt.Sprintf(`  <defs><pattern id="grid" width="%d" height="%d" patternUnits="userSpaceOnUse">`+
		`<path d="M %d 0 L 0 0 0 %d" fill="none" stroke="#e5e7eb" stroke-width="1"/></pattern></defs>`+"\n"+
		`  <rect id="grid-bg" x="0" y="0" width="%d" height="%d" fill="url(#grid)"/>`+"\n",
		g, g, g, g, width, height)
}

func (r *Renderer) renderRoom(room models.Room) []string {
	roomType := room.Type
	if roomType == "" {
		roomType = "room"
	}

	rect := fmt.Sprintf(`<rect id="Room_%s" data-room-id="%s" data-room-type="%s" x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#374151" stroke-width="2"/>`,
		html.EscapeString(room.ID), html.EscapeString(room.ID), html.EscapeString(roomType),
		room.X, room.Y, room.Width, room.Height, fillFor(roomType))

	cx := float64(room.X) + float64(room.Width)/2
	cy := float64(room.Y) + float64(room.Height)/2
	label := fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="12">%s</text>`,
		formatFloat(cx), formatFloat(cy), html.EscapeString(roomType))

	return []string{rect, label}
}

var palette = map[string]string{
	"bedroom":  "#dbeafe",
	"bathroom": "#cffafe",
	"kitchen":  "#fef3c7",
	"living":   "#dcfce7",
}

func fillFor(roomType string) string {
	if c, ok := palette[strings.ToLower(roomType)]; ok {
		return c
	}
	return "#f3f4f6"
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
