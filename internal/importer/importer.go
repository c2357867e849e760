// Package importer reads polygon outlines from point lists (CSV, Excel),
// DXF drawings and GeoJSON files. Point lists support automatic delimiter
// detection, flexible column mapping, and case-insensitive header
// recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RectFit/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Regions  []model.Region
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// Region is -1 when every row belongs to one polygon.
type ColumnMapping struct {
	Region int
	X      int
	Y      int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"region": {"region", "id", "name", "label", "shape", "polygon", "part"},
	"x":      {"x", "px", "east", "easting", "lon", "longitude"},
	"y":      {"y", "py", "north", "northing", "lat", "latitude"},
}

// DetectCSVDelimiter returns the most likely delimiter among comma,
// semicolon, tab and pipe. The winner splits the first line into at
// least two columns and keeps that column count on the most lines.
func DetectCSVDelimiter(data []byte) rune {
	best := ','
	bestScore := 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readRecords(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		cols := len(records[0])
		consistent := 0
		for _, row := range records {
			if len(row) == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			bestScore = score
			best = delim
		}
	}
	return best
}

func readRecords(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases. When no
// header is recognized it returns a positional mapping (x,y for two
// columns, region,x,y for three or more) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Region: -1, X: -1, Y: -1}
	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch {
				case role == "region" && mapping.Region == -1:
					mapping.Region = i
				case role == "x" && mapping.X == -1:
					mapping.X = i
				case role == "y" && mapping.Y == -1:
					mapping.Y = i
				}
			}
		}
	}
	if isHeader {
		return mapping, true
	}
	if len(row) >= 3 {
		return ColumnMapping{Region: 0, X: 1, Y: 2}, false
	}
	return ColumnMapping{Region: -1, X: 0, Y: 1}, false
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Import picks an importer from the file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	case ".geojson", ".json":
		return ImportGeoJSON(path)
	}
	return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
}

// ImportCSV imports polygons from a CSV point list. Each row is one
// vertex. Consecutive rows sharing a region value form one polygon.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	records, err := readRecords(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports polygons from a CSV reader with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	records, err := readRecords(r, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports polygons from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared point-list logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		var missing []string
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := strconv.ParseFloat(getCell(rows[0], mapping.X), 64); err != nil {
		// Unrecognized header: skip it but keep the positional mapping
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	var current *model.Region
	flush := func() {
		if current == nil {
			return
		}
		if len(current.Outline) < 3 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped region %q with %d points", current.Label, len(current.Outline)))
		} else {
			result.Regions = append(result.Regions, *current)
		}
		current = nil
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		p, errMsg := parsePoint(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		label := getCell(row, mapping.Region)
		if label == "" {
			label = fmt.Sprintf("Region %d", len(result.Regions)+1)
			if current != nil {
				label = current.Label
			}
		}
		if current == nil || current.Label != label {
			flush()
			r := model.NewRegion(label, nil)
			current = &r
		}
		current.Outline = append(current.Outline, p)
	}
	flush()

	if len(result.Regions) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No polygons found")
	}
	return result
}

func parsePoint(row []string, mapping ColumnMapping, rowLabel string) (model.Point2D, string) {
	xs := getCell(row, mapping.X)
	ys := getCell(row, mapping.Y)
	if xs == "" || ys == "" {
		return model.Point2D{}, fmt.Sprintf("%s: Missing coordinate", rowLabel)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return model.Point2D{}, fmt.Sprintf("%s: Invalid x '%s'", rowLabel, xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return model.Point2D{}, fmt.Sprintf("%s: Invalid y '%s'", rowLabel, ys)
	}
	return model.Point2D{X: x, Y: y}, ""
}
