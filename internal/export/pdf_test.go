package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/RectFit/internal/model"
)

// buildTestEntries creates a small, realistic set of fit results.
func buildTestEntries() []Entry {
	lShape := model.Outline{
		{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 40}, {X: 0, Y: 40},
	}
	slab := model.Outline{{X: 0, Y: 0}, {X: 1200, Y: 0}, {X: 1100, Y: 600}, {X: 100, Y: 600}}
	return []Entry{
		{
			Key:     "a1b2c3d4",
			Label:   "Offcut L",
			Outline: lShape,
			Result: model.FitResult{
				Rectangle: model.NewRectangle(model.Point2D{X: 20, Y: 5}, 0, 40, 10),
				Method:    model.MethodBoundary,
				Elapsed:   42 * time.Millisecond,
			},
		},
		{
			Key:     "e5f6a7b8+c9d0e1f2",
			Label:   "Trapezoid slab",
			Outline: slab,
			Result: model.FitResult{
				Rectangle: model.NewRectangle(model.Point2D{X: 600, Y: 300}, 0, 1000, 600),
				Method:    model.MethodTrapezoid,
				Truncated: true,
			},
		},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_output.pdf")

	err := ExportPDF(path, buildTestEntries())
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("PDF file is empty")
	}
	// 2 result pages plus the summary
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, nil); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}

func TestExportPDF_ManyEntriesPaginateSummary(t *testing.T) {
	base := buildTestEntries()[0]
	entries := make([]Entry, 40)
	for i := range entries {
		entries[i] = base
	}
	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportPDF(path, entries); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestEntry_Coverage(t *testing.T) {
	e := buildTestEntries()[0]
	// L-shape area is 700, rectangle 400
	want := 400.0 / 700.0 * 100
	if got := e.Coverage(); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("expected coverage %.4f, got %.4f", want, got)
	}
	if got := (Entry{}).Coverage(); got != 0 {
		t.Errorf("expected zero coverage for empty outline, got %f", got)
	}
}

func TestViewport_FlipsAndCenters(t *testing.T) {
	o := model.Outline{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 0, Y: 10}}
	vp := newViewport(o, 0, 0, 100, 100)

	// Scale is limited by width: 100/20 = 5, so the drawing is 100 x 50
	// centered vertically at y offset 25.
	x, y := vp.apply(model.Point2D{X: 0, Y: 0})
	if x != 0 || y != 75 {
		t.Errorf("origin maps to (%.1f, %.1f), want (0, 75)", x, y)
	}
	x, y = vp.apply(model.Point2D{X: 20, Y: 10})
	if x != 100 || y != 25 {
		t.Errorf("far corner maps to (%.1f, %.1f), want (100, 25)", x, y)
	}
}
