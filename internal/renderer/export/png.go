package export

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"floorplanner/internal/geometry"
	"floorplanner/internal/renderer/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const pngFontSize = 12.0

var (
	labelFont     *truetype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// PNG rasterises the layout at one pixel per canvas pixel, grid included.
func PNG(w io.Writer, layout *models.Layout) error {
	if layout == nil {
		return fmt.Errorf("layout is nil")
	}

	ttf, err := loadLabelFont()
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	width, height := layout.Extent()
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	// Grid
	dc.SetRGB255(229, 231, 235)
	dc.SetLineWidth(1)
	for x := geometry.GridSize; x < width; x += geometry.GridSize {
		dc.DrawLine(float64(x)+0.5, 0, float64(x)+0.5, float64(height))
	}
	for y := geometry.GridSize; y < height; y += geometry.GridSize {
		dc.DrawLine(0, float64(y)+0.5, float64(width), float64(y)+0.5)
	}
	dc.Stroke()

	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    pngFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, room := range layout.Rooms {
		col, ok := roomColors[room.Type]
		if !ok {
			col = roomDefault
		}
		x, y := float64(room.X), float64(room.Y)
		rw, rh := float64(room.Width), float64(room.Height)

		dc.DrawRectangle(x, y, rw, rh)
		dc.SetRGB255(col.R, col.G, col.B)
		dc.FillPreserve()
		dc.SetRGB255(55, 65, 81)
		dc.SetLineWidth(2)
		dc.Stroke()

		label := roomLabel(room)
		if tw, th := dc.MeasureString(label); tw < rw-4 && th < rh-4 {
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(label, x+rw/2, y+rh/2, 0.5, 0.5)
		}
	}

	return dc.EncodePNG(w)
}
