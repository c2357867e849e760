package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/RectFit/internal/model"
)

// newTestSettings returns CutSettings suitable for testing with predictable output.
func newTestSettings() model.CutSettings {
	s := model.DefaultCutSettings()
	s.ToolDiameter = 6.0
	s.FeedRate = 1000.0
	s.PlungeRate = 300.0
	s.SpindleSpeed = 12000
	s.SafeZ = 5.0
	s.CutDepth = 18.0
	s.PassDepth = 6.0
	s.GCodeProfile = "Generic"
	return s
}

func newTestRectangle() model.Rectangle {
	return model.NewRectangle(model.Point2D{X: 50, Y: 25}, 0, 100, 50)
}

func TestGenerate_HeaderAndFooter(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.Generate("Offcut A", newTestRectangle())

	if !strings.HasPrefix(code, "; RectFit GCode - Offcut A\n") {
		t.Errorf("unexpected header:\n%s", code[:80])
	}
	for _, want := range []string{"G90\n", "G21\n", "M3 S12000\n", "M5\n", "M2\n", "G0 Z5.000\n"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(code, "[SafeZ]") {
		t.Error("SafeZ placeholder was not substituted")
	}
}

func TestGenerate_PassDepths(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.Generate("A", newTestRectangle())

	for _, want := range []string{"G1 Z-6.000 F300.000", "G1 Z-12.000 F300.000", "G1 Z-18.000 F300.000"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected plunge %q", want)
		}
	}
	if strings.Contains(code, "Z-24") {
		t.Error("cut deeper than the material")
	}
}

func TestGenerate_UnevenFinalPass(t *testing.T) {
	s := newTestSettings()
	s.CutDepth = 15
	gen := New(s)
	if gen.Passes() != 3 {
		t.Fatalf("expected 3 passes, got %d", gen.Passes())
	}
	code := gen.Generate("A", newTestRectangle())
	if !strings.Contains(code, "G1 Z-15.000") {
		t.Error("final pass should stop at the material thickness")
	}
}

func TestPasses_ZeroPassDepth(t *testing.T) {
	s := newTestSettings()
	s.PassDepth = 0
	if got := New(s).Passes(); got != 1 {
		t.Errorf("expected a single pass, got %d", got)
	}
}

func TestToolPath_OffsetOutward(t *testing.T) {
	gen := New(newTestSettings())
	path := gen.ToolPath(newTestRectangle())

	want := [4]model.Point2D{{X: -3, Y: -3}, {X: 103, Y: -3}, {X: 103, Y: 53}, {X: -3, Y: 53}}
	for i := range want {
		if math.Abs(path[i].X-want[i].X) > 1e-9 || math.Abs(path[i].Y-want[i].Y) > 1e-9 {
			t.Errorf("corner %d: got (%.3f, %.3f), want (%.3f, %.3f)", i, path[i].X, path[i].Y, want[i].X, want[i].Y)
		}
	}
}

func TestToolPath_Rotated(t *testing.T) {
	gen := New(newTestSettings())
	r := model.NewRectangle(model.Point2D{X: 0, Y: 0}, 30, 40, 20)
	path := gen.ToolPath(r)

	// Sides grow by one tool diameter and the center stays put
	if d := path[0].Dist(path[1]); math.Abs(d-46) > 1e-9 {
		t.Errorf("expected long side 46, got %f", d)
	}
	if d := path[1].Dist(path[2]); math.Abs(d-26) > 1e-9 {
		t.Errorf("expected short side 26, got %f", d)
	}
	mid := model.Point2D{X: (path[0].X + path[2].X) / 2, Y: (path[0].Y + path[2].Y) / 2}
	if mid.Dist(r.Center) > 1e-9 {
		t.Errorf("tool path center moved to %+v", mid)
	}
}

func TestGenerate_ParsesBack(t *testing.T) {
	gen := New(newTestSettings())
	stats := Summarize(Parse(gen.Generate("A", newTestRectangle())))

	if stats.Plunges != 3 {
		t.Errorf("expected 3 plunges, got %d", stats.Plunges)
	}
	if math.Abs(stats.MaxDepth-18) > 1e-9 {
		t.Errorf("expected max depth 18, got %f", stats.MaxDepth)
	}
	// Three passes around a 106 x 56 tool path
	if math.Abs(stats.CutLength-3*2*(106+56)) > 1e-6 {
		t.Errorf("unexpected cut length %f", stats.CutLength)
	}
	if stats.MinX != -3 || stats.MinY != -3 || stats.MaxX != 103 || stats.MaxY != 53 {
		t.Errorf("unexpected cut bounds %+v", stats)
	}
}

func TestGenerate_Mach3Comments(t *testing.T) {
	s := newTestSettings()
	s.GCodeProfile = "Mach3"
	code := New(s).Generate("A", newTestRectangle())

	if !strings.Contains(code, "( RectFit GCode - A)") {
		t.Error("expected parenthesised comments")
	}
	if !strings.Contains(code, "X-3.0000") {
		t.Error("expected 4 decimal places")
	}
	if !strings.Contains(code, "M30") {
		t.Error("expected Mach3 end code")
	}
}

func TestFormat_NoNegativeZero(t *testing.T) {
	gen := New(newTestSettings())
	if got := gen.format(-0.0001); got != "0.000" {
		t.Errorf("expected 0.000, got %q", got)
	}
	if got := gen.format(-1.5); got != "-1.500" {
		t.Errorf("expected -1.500, got %q", got)
	}
}
