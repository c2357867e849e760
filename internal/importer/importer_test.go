package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/RectFit/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Region,X,Y\nA,0,0\nA,10,0\nA,10,10\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Region;X;Y\nA;0;0\nA;10,5;0\nA;10;10\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Region\tX\tY\nA\t0\t0\nA\t10\t0\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Region|X|Y\nA|0|0\nA|10|0\n")
	if got := DetectCSVDelimiter(data); got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Region", "X", "Y"})
	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Region != 0 || mapping.X != 1 || mapping.Y != 2 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Latitude", "Longitude", "Name"})
	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Region != 2 || mapping.X != 1 || mapping.Y != 0 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_MissingRegion(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{" x ", "Y"})
	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Region != -1 {
		t.Errorf("expected no region column, got %d", mapping.Region)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"A", "0", "0"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Region != 0 || mapping.X != 1 || mapping.Y != 2 {
		t.Errorf("expected positional region,x,y mapping, got %+v", mapping)
	}

	mapping, _ = DetectColumns([]string{"0", "0"})
	if mapping.Region != -1 || mapping.X != 0 || mapping.Y != 1 {
		t.Errorf("expected positional x,y mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	input := "Region,X,Y\nA,0,0\nA,10,0\nA,10,10\nA,0,10\nB,20,0\nB,30,0\nB,25,8\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(result.Regions))
	}
	a, b := result.Regions[0], result.Regions[1]
	if a.Label != "A" || len(a.Outline) != 4 {
		t.Errorf("region A: label=%q points=%d", a.Label, len(a.Outline))
	}
	if b.Label != "B" || len(b.Outline) != 3 {
		t.Errorf("region B: label=%q points=%d", b.Label, len(b.Outline))
	}
	if a.Outline[2] != (model.Point2D{X: 10, Y: 10}) {
		t.Errorf("unexpected third vertex %+v", a.Outline[2])
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct region IDs, got %q and %q", a.ID, b.ID)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	input := "0,0\n4,0\n4,3\n0,3\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(result.Regions))
	}
	r := result.Regions[0]
	if r.Label != "Region 1" {
		t.Errorf("expected default label, got %q", r.Label)
	}
	if got := r.Outline.Area(); math.Abs(got-12) > 1e-9 {
		t.Errorf("expected area 12, got %f", got)
	}
}

func TestImportCSVFromReader_SemicolonDelimiter(t *testing.T) {
	input := "X;Y\n0;0\n1.5;0\n1.5;2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ';')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 1 || len(result.Regions[0].Outline) != 3 {
		t.Fatalf("expected one triangle, got %+v", result.Regions)
	}
	if result.Regions[0].Outline[1].X != 1.5 {
		t.Errorf("expected x=1.5, got %f", result.Regions[0].Outline[1].X)
	}
}

func TestImportCSVFromReader_PositionalHeaderSkipped(t *testing.T) {
	input := "Foo,Bar,Baz\nA,0,0\nA,1,0\nA,0,1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	hasWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "header") {
			hasWarning = true
		}
	}
	if !hasWarning {
		t.Errorf("expected header warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSVFromReader_InvalidCoordinate(t *testing.T) {
	input := "Region,X,Y\nA,0,0\nA,abc,0\nA,1,1\nA,0,1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 3") || !strings.Contains(result.Errors[0], "Invalid x") {
		t.Errorf("unexpected error message %q", result.Errors[0])
	}
	if len(result.Regions) != 1 || len(result.Regions[0].Outline) != 3 {
		t.Errorf("expected the valid rows to form a triangle, got %+v", result.Regions)
	}
}

func TestImportCSVFromReader_MissingCoordinate(t *testing.T) {
	input := "Region,X,Y\nA,0,\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Missing coordinate") {
		t.Errorf("expected missing coordinate error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_TooFewPoints(t *testing.T) {
	input := "Region,X,Y\nA,0,0\nA,1,0\nB,0,0\nB,1,0\nB,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Regions) != 1 || result.Regions[0].Label != "B" {
		t.Fatalf("expected only region B, got %+v", result.Regions)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, `"A"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning about region A, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_NoPolygons(t *testing.T) {
	input := "X,Y\n0,0\n1,1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')
	if len(result.Errors) != 1 || result.Errors[0] != "No polygons found" {
		t.Errorf("expected no polygons error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyRows(t *testing.T) {
	input := "Region,X,Y\nA,0,0\n,,\nA,1,0\n\nA,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 1 || len(result.Regions[0].Outline) != 3 {
		t.Errorf("expected empty rows to be skipped, got %+v", result.Regions)
	}
}

func TestImportCSVFromReader_BlankLabelContinues(t *testing.T) {
	input := "Region,X,Y\nA,0,0\n,1,0\n,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Regions) != 1 || result.Regions[0].Label != "A" || len(result.Regions[0].Outline) != 3 {
		t.Errorf("expected blank labels to continue region A, got %+v", result.Regions)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	input := "Region,X\nA,0\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Y") {
		t.Errorf("expected error mentioning Y, got %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_WhitespaceInValues(t *testing.T) {
	input := "Region, X, Y\n A , 0 , 0 \nA, 2,0\nA,2 , 2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 1 || result.Regions[0].Label != "A" {
		t.Errorf("expected trimmed region A, got %+v", result.Regions)
	}
}

func TestImportCSV_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outline.csv")
	content := "region;x;y\nslab;0;0\nslab;100;0\nslab;100;50\nslab;0;50\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 1 || len(result.Regions[0].Outline) != 4 {
		t.Fatalf("expected one quadrilateral, got %+v", result.Regions)
	}
	hasDelimWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasDelimWarning = true
		}
	}
	if !hasDelimWarning {
		t.Errorf("expected semicolon delimiter warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/outline.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	result := ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outline.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Region", "X", "Y"},
		{"Top", 0, 0},
		{"Top", 40, 0},
		{"Top", 40, 20},
		{"Top", 0, 20},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(result.Regions))
	}
	if got := result.Regions[0].Outline.Area(); math.Abs(got-800) > 1e-9 {
		t.Errorf("expected area 800, got %f", got)
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"X", "Y"},
		{"abc", 0},
		{0, 0},
		{1, 0},
		{1, 1},
	})

	result := ImportExcel(path)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Row 2") {
		t.Errorf("expected one error on Row 2, got %v", result.Errors)
	}
	if len(result.Regions) != 1 {
		t.Errorf("expected the valid rows to form a region, got %d", len(result.Regions))
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/path/outline.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Import dispatch ────────────────────────────────────────

func TestImport_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "outline.CSV")
	if err := os.WriteFile(csvPath, []byte("x,y\n0,0\n10,0\n10,10\n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := Import(csvPath)
	if len(result.Errors) != 0 || len(result.Regions) != 1 {
		t.Fatalf("expected one region from CSV, got %d regions, errors %v", len(result.Regions), result.Errors)
	}

	geoPath := filepath.Join(dir, "outline.geojson")
	geo := `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]]]}`
	if err := os.WriteFile(geoPath, []byte(geo), 0644); err != nil {
		t.Fatal(err)
	}
	result = Import(geoPath)
	if len(result.Regions) != 1 {
		t.Fatalf("expected one region from GeoJSON, got %d (errors %v)", len(result.Regions), result.Errors)
	}
}

func TestImport_UnsupportedExtension(t *testing.T) {
	result := Import("outline.png")
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], ".png") {
		t.Errorf("expected unsupported type error, got %v", result.Errors)
	}
}
