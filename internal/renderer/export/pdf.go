// Package export renders saved layouts into printable and CAD formats.
package export

import (
	"fmt"
	"io"
	"math"

	"floorplanner/internal/renderer/models"

	"github.com/go-pdf/fpdf"
)

// roomColor is an RGB fill used for a room type.
type roomColor struct {
	R, G, B int
}

// roomColors follows the svg palette; unknown types use roomDefault.
var roomColors = map[string]roomColor{
	"bedroom":  {R: 219, G: 234, B: 254},
	"bathroom": {R: 207, G: 250, B: 254},
	"kitchen":  {R: 254, G: 243, B: 199},
	"living":   {R: 220, G: 252, B: 231},
}

var roomDefault = roomColor{R: 243, G: 244, B: 246}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	rowHeight    = 6.0
)

// PDF writes a two page document: the plan drawn to scale and a room
// schedule with areas.
func PDF(w io.Writer, layout *models.Layout) error {
	if layout == nil {
		return fmt.Errorf("layout is nil")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, layout)

	pdf.AddPage()
	renderSchedulePage(pdf, layout)

	return pdf.Output(w)
}

func title(layout *models.Layout) string {
	if layout.Name != "" {
		return layout.Name
	}
	return "Floor plan"
}

// renderPlanPage draws the canvas and every room on the current page.
func renderPlanPage(pdf *fpdf.Fpdf, layout *models.Layout) {
	width, height := layout.Extent()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	header := fmt.Sprintf("%s (%d x %d px, %d rooms)", title(layout), width, height, len(layout.Rooms))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, header, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom

	scale := math.Min(drawWidth/float64(width), drawHeight/float64(height))
	canvasW := float64(width) * scale
	canvasH := float64(height) * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Canvas
	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.3)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, room := range layout.Rooms {
		col, ok := roomColors[room.Type]
		if !ok {
			col = roomDefault
		}
		rw := float64(room.Width) * scale
		rh := float64(room.Height) * scale
		rx := offsetX + float64(room.X)*scale
		ry := offsetY + float64(room.Y)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(55, 65, 81)
		pdf.SetLineWidth(0.4)
		pdf.Rect(rx, ry, rw, rh, "FD")

		if rw < 10 || rh < 6 {
			continue
		}

		pdf.SetFont("Helvetica", "", labelFontSize(rw, rh))
		pdf.SetTextColor(0, 0, 0)

		label := roomLabel(room)
		dims := fmt.Sprintf("%dx%d", room.Width, room.Height)
		labelW := pdf.GetStringWidth(label)
		dimsW := pdf.GetStringWidth(dims)

		if labelW < rw-2 {
			pdf.SetXY(rx+(rw-labelW)/2, ry+rh/2-4)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
		if rh > 12 && dimsW < rw-2 {
			pdf.SetXY(rx+(rw-dimsW)/2, ry+rh/2)
			pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
		}
	}
}

// labelFontSize shrinks the label font for small rooms.
func labelFontSize(w, h float64) float64 {
	size := math.Min(w/6, h/3)
	return math.Max(5, math.Min(9, size))
}

// renderSchedulePage lists the rooms with their position, size and area.
func renderSchedulePage(pdf *fpdf.Fpdf, layout *models.Layout) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Room schedule", "", 0, "L", false, 0, "")

	headers := []string{"#", "ID", "Type", "X", "Y", "Width", "Height", "Area"}
	widths := []float64{10, 45, 45, 25, 25, 30, 30, 40}

	y := drawAreaTop
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(229, 231, 235)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "C", true, 0, "")
		x += widths[i]
	}
	y += rowHeight

	pdf.SetFont("Helvetica", "", 9)
	for n, room := range layout.Rooms {
		if y+rowHeight > pageHeight-marginBottom-rowHeight {
			pdf.AddPage()
			y = marginTop
		}
		cells := []string{
			fmt.Sprintf("%d", n+1),
			room.ID,
			roomLabel(room),
			fmt.Sprintf("%d", room.X),
			fmt.Sprintf("%d", room.Y),
			fmt.Sprintf("%d", room.Width),
			fmt.Sprintf("%d", room.Height),
			fmt.Sprintf("%d", room.Area()),
		}
		x = marginLeft
		for i, c := range cells {
			align := "R"
			if i == 1 || i == 2 {
				align = "L"
			}
			pdf.SetXY(x, y)
			pdf.CellFormat(widths[i], rowHeight, c, "1", 0, align, false, 0, "")
			x += widths[i]
		}
		y += rowHeight
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(marginLeft, y+2)
	total := fmt.Sprintf("Total area: %d px2", layout.TotalArea())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, rowHeight, total, "", 0, "L", false, 0, "")
}
