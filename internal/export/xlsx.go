package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var xlsxHeaders = []string{
	"Key", "Region", "Center X", "Center Y", "Angle", "Width", "Height",
	"Area", "Polygon Area", "Coverage %", "Method", "Elapsed ms", "Truncated",
}

// ExportXLSX writes one row per entry to the "Results" sheet of a new workbook.
func ExportXLSX(path string, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no results to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(xlsxHeaders))
	for i, h := range xlsxHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, e := range entries {
		r := e.Result.Rectangle
		row := []interface{}{
			e.Key,
			e.Label,
			r.Center.X,
			r.Center.Y,
			r.AngleDeg,
			r.Width,
			r.Height,
			r.Area,
			e.Outline.Area(),
			e.Coverage(),
			string(e.Result.Method),
			e.Result.Elapsed.Milliseconds(),
			e.Result.Truncated,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
