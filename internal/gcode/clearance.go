package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/RectFit/internal/engine"
	"github.com/piwi3910/RectFit/internal/model"
)

// clearanceSamples is the number of points checked along each cutting move.
const clearanceSamples = 16

// Excursion is a point where the tool cuts outside the slab outline.
type Excursion struct {
	MoveIndex int
	X, Y      float64
	Distance  float64 // Distance outside the slab
}

// CheckSlabClearance samples every cutting move and reports where the
// tool center leaves the slab by more than the tool radius, i.e. where
// the cutter would run entirely in free air or into the fixture. At most
// one excursion is reported per move, the farthest one.
func CheckSlabClearance(moves []Move, slab model.Outline, toolDiameter float64) []Excursion {
	if len(slab) < 3 {
		return nil
	}
	limit := toolDiameter / 2
	var out []Excursion

	for i, m := range moves {
		if m.Type != MoveFeed || (m.ToZ >= 0 && m.FromZ >= 0) {
			continue
		}
		worst := Excursion{MoveIndex: -1}
		for s := 0; s <= clearanceSamples; s++ {
			t := float64(s) / clearanceSamples
			p := model.Point2D{X: m.FromX + (m.ToX-m.FromX)*t, Y: m.FromY + (m.ToY-m.FromY)*t}
			if engine.PointInPolygon(p, slab) {
				continue
			}
			d := engine.DistanceToBoundary(p, slab)
			if d > limit && d > worst.Distance {
				worst = Excursion{MoveIndex: i, X: p.X, Y: p.Y, Distance: d}
			}
		}
		if worst.MoveIndex >= 0 {
			out = append(out, worst)
		}
	}
	return out
}

// FormatClearanceWarnings produces human-readable warnings for excursions.
func FormatClearanceWarnings(excursions []Excursion) []string {
	warnings := make([]string, 0, len(excursions))
	for _, e := range excursions {
		warnings = append(warnings, fmt.Sprintf(
			"Move %d: tool leaves the slab at (%.1f, %.1f) by %.1f mm",
			e.MoveIndex+1, e.X, e.Y, math.Round(e.Distance*10)/10))
	}
	return warnings
}
