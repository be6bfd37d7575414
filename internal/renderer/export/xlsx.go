package export

import (
	"fmt"

	"floorplanner/internal/renderer/models"

	"github.com/xuri/excelize/v2"
)

const sheetRooms = "Rooms"

var xlsxHeaders = []string{"ID", "Type", "X", "Y", "Width", "Height", "Area", "Metadata"}

// XLSX builds a workbook with one row per room and a totals row.
func XLSX(layout *models.Layout) ([]byte, error) {
	if layout == nil {
		return nil, fmt.Errorf("layout is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetRooms); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range xlsxHeaders {
		if err := setCell(f, col+1, 1, h); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheetRooms, "A1", "H1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, room := range layout.Rooms {
		values := []interface{}{
			room.ID, roomLabel(room), room.X, room.Y, room.Width, room.Height, room.Area(), room.AttachedJSON,
		}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	if err := setCell(f, 1, row, "Total"); err != nil {
		return nil, err
	}
	if err := setCell(f, 7, row, layout.TotalArea()); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetRooms, "A", "H", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheetRooms, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}
