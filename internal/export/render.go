package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"

	devicesSheet = "devices"
	summarySheet = "summary"
)

var scheduleHeader = []string{"Floor", "Room", "Device", "Category", "Wall", "X", "Y", "Rotation", "Valid", "Issue"}

func wallName(w geometry.Wall) string {
	switch w {
	case geometry.WallNorth:
		return "north"
	case geometry.WallSouth:
		return "south"
	case geometry.WallEast:
		return "east"
	case geometry.WallWest:
		return "west"
	}
	return ""
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// BuildScheduleXLSX renders the schedule as a workbook: a summary sheet and a
// devices sheet with one row per placement.
func BuildScheduleXLSX(title string, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(devicesSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	invalid := 0
	for _, r := range rows {
		if !r.Valid {
			invalid++
		}
	}
	_ = f.SetCellValue(summarySheet, "A1", "Device Schedule")
	_ = f.SetCellValue(summarySheet, "A3", "Project")
	_ = f.SetCellValue(summarySheet, "B3", title)
	_ = f.SetCellValue(summarySheet, "A4", "Devices")
	_ = f.SetCellValue(summarySheet, "B4", len(rows))
	_ = f.SetCellValue(summarySheet, "A5", "Needing attention")
	_ = f.SetCellValue(summarySheet, "B5", invalid)

	for i, h := range scheduleHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(devicesSheet, cell, h)
	}
	for i, r := range rows {
		row := i + 2
		values := []interface{}{r.Floor, r.Room, r.Device, r.Category, r.Wall, r.X, r.Y, r.Rotation, yesNo(r.Valid), r.Reason}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(devicesSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildSchedulePDF renders the schedule as a landscape table.
func BuildSchedulePDF(title string, rows []Row) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Device Schedule")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", title))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Devices: %d", len(rows)))
	pdf.Ln(8)

	widths := []float64{30, 34, 40, 26, 16, 16, 16, 18, 12, 60}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range scheduleHeader {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		cells := []string{
			r.Floor,
			r.Room,
			r.Device,
			r.Category,
			r.Wall,
			fmt.Sprintf("%.1f", r.X),
			fmt.Sprintf("%.1f", r.Y),
			fmt.Sprintf("%.0f", r.Rotation),
			yesNo(r.Valid),
			r.Reason,
		}
		for i, c := range cells {
			align := "L"
			if i >= 5 && i <= 8 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
