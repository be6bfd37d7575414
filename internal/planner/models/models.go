package models

import (
	"time"

	"floorplanner/internal/geometry"
)

// ============================================================
// Room Template
// ============================================================

// Template описывает тип комнаты из каталога.
type Template struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	SVG    string `json:"svg,omitempty"`
}

// ============================================================
// Room
// ============================================================

type Room struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Rect        geometry.Rect `json:"rect"`
	MetadataRef string        `json:"metadata_ref,omitempty"`
}

// Item returns the persisted form of the room.
func (r Room) Item() LayoutItem {
	return LayoutItem{
		ID:           r.ID,
		Type:         r.Type,
		X:            r.Rect.X,
		Y:            r.Rect.Y,
		Width:        r.Rect.W,
		Height:       r.Rect.H,
		AttachedJSON: r.MetadataRef,
	}
}

// ============================================================
// Layout
// ============================================================

// LayoutItem is one saved room, in the shape exchanged with the browser.
type LayoutItem struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AttachedJSON string `json:"attached_json"`
}

func (i LayoutItem) Rect() geometry.Rect {
	return geometry.Rect{X: i.X, Y: i.Y, W: i.Width, H: i.Height}
}

type Layout struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CanvasWidth  int          `json:"canvas_width"`
	CanvasHeight int          `json:"canvas_height"`
	Rooms        []LayoutItem `json:"rooms"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type LayoutSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RoomCount int       `json:"room_count"`
	UpdatedAt time.Time `json:"updated_at"`
}
