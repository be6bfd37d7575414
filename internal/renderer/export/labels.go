package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"floorplanner/internal/renderer/models"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo is the data encoded into a room label's QR code.
type LabelInfo struct {
	Layout   string `json:"layout,omitempty"`
	RoomID   string `json:"room"`
	Type     string `json:"type"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Metadata string `json:"metadata,omitempty"`
}

// Label sheet layout: A4 portrait, 3 columns x 8 rows of 70 x 37 mm.
const (
	labelMarginTop  = 0.5
	labelMarginLeft = 0.0
	labelWidth      = 70.0
	labelHeight     = 37.0
	labelCols       = 3
	labelRows       = 8
	labelsPerPage   = labelCols * labelRows
	qrSize          = 28.0
	labelPadding    = 3.0
)

// Labels writes a sheet of QR-coded labels, one per room.
func Labels(w io.Writer, layout *models.Layout) error {
	if layout == nil {
		return fmt.Errorf("layout is nil")
	}
	if len(layout.Rooms) == 0 {
		return fmt.Errorf("no rooms to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, room := range layout.Rooms {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		info := LabelInfo{
			Layout:   layout.ID,
			RoomID:   room.ID,
			Type:     roomLabel(room),
			X:        room.X,
			Y:        room.Y,
			Width:    room.Width,
			Height:   room.Height,
			Metadata: room.AttachedJSON,
		}
		if err := renderLabel(pdf, x, y, i, info); err != nil {
			return fmt.Errorf("label for %q: %w", room.ID, err)
		}
	}

	return pdf.Output(w)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, n int, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	name := fmt.Sprintf("qr_%d", n)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(textX, y+labelPadding+2)
	pdf.CellFormat(textW, 5, info.Type, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 4, info.RoomID, "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+14)
	pdf.CellFormat(textW, 4, fmt.Sprintf("%d x %d", info.Width, info.Height), "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+19)
	pdf.CellFormat(textW, 4, fmt.Sprintf("at %d, %d", info.X, info.Y), "", 0, "L", false, 0, "")

	return nil
}
