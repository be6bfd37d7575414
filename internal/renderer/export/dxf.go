package export

import (
	"fmt"
	"os"
	"path/filepath"

	"floorplanner/internal/renderer/models"

	"github.com/yofu/dxf"
)

// Layer names used in exported drawings.
const (
	LayerCanvas = "CANVAS"
	LayerRooms  = "ROOMS"
	LayerLabels = "LABELS"
)

const dxfTextHeight = 10.0

// DXF renders the layout as a DXF drawing. Every room becomes a closed
// LWPOLYLINE with a text label; the canvas is drawn as a frame of LINEs.
// The y axis is flipped so the plan reads the same way up as on screen.
func DXF(layout *models.Layout) ([]byte, error) {
	if layout == nil {
		return nil, fmt.Errorf("layout is nil")
	}

	width, height := layout.Extent()
	top := float64(height)

	d := dxf.NewDrawing()
	for _, name := range []string{LayerCanvas, LayerRooms, LayerLabels} {
		if _, err := d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", name, err)
		}
	}

	if len(layout.Rooms) > 0 {
		if err := d.ChangeLayer(LayerCanvas); err != nil {
			return nil, err
		}
		w, h := float64(width), float64(height)
		frame := [][4]float64{
			{0, 0, w, 0},
			{w, 0, w, h},
			{w, h, 0, h},
			{0, h, 0, 0},
		}
		for _, l := range frame {
			if _, err := d.Line(l[0], l[1], 0, l[2], l[3], 0); err != nil {
				return nil, fmt.Errorf("draw frame: %w", err)
			}
		}
	}

	for _, room := range layout.Rooms {
		x0 := float64(room.X)
		x1 := float64(room.X + room.Width)
		y0 := top - float64(room.Y+room.Height)
		y1 := top - float64(room.Y)

		if err := d.ChangeLayer(LayerRooms); err != nil {
			return nil, err
		}
		if _, err := d.LwPolyline(true,
			[]float64{x0, y0}, []float64{x1, y0}, []float64{x1, y1}, []float64{x0, y1},
		); err != nil {
			return nil, fmt.Errorf("draw room %s: %w", room.ID, err)
		}

		if err := d.ChangeLayer(LayerLabels); err != nil {
			return nil, err
		}
		label := fmt.Sprintf("%s %dx%d", roomLabel(room), room.Width, room.Height)
		if _, err := d.Text(label, x0+4, y1-dxfTextHeight-4, 0, dxfTextHeight); err != nil {
			return nil, fmt.Errorf("label room %s: %w", room.ID, err)
		}
	}

	dir, err := os.MkdirTemp("", "plan-dxf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "layout.dxf")
	if err := d.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save DXF: %w", err)
	}
	return os.ReadFile(path)
}

func roomLabel(room models.Room) string {
	if room.Type == "" {
		return "room"
	}
	return room.Type
}
