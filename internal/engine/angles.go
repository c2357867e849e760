package engine

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// Extra sweep angles around the vertical, where thin shapes often peak.
var verticalProbeAngles = []float64{86, 90, 92, 94}

// angleSet collects angles in insertion order, dropping repeats.
type angleSet struct {
	angles []float64
	seen   map[int64]bool
}

func newAngleSet() *angleSet {
	return &angleSet{seen: make(map[int64]bool)}
}

func (s *angleSet) add(deg float64) {
	a := model.NormalizeAngle180(deg)
	key := int64(math.Round(a * 1e6))
	if key == 180e6 {
		key = 0
		a = 0
	}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.angles = append(s.angles, a)
}

func (s *angleSet) addWithPerpendicular(deg float64) {
	s.add(deg)
	s.add(deg + 90)
}

func (s *angleSet) addSweep(step float64) {
	if step <= 0 {
		return
	}
	for a := 0.0; a < 180-1e-9; a += step {
		s.add(a)
	}
}

// naturalAngles returns each unique edge angle, rounded to a tenth of a
// degree, together with its perpendicular.
func naturalAngles(o model.Outline) []float64 {
	s := newAngleSet()
	for _, a := range uniqueEdgeAngles(o, 0.1) {
		s.addWithPerpendicular(math.Round(a*10) / 10)
	}
	return s.angles
}

// BoundaryAngles returns the angle schedule of the boundary-driven pass:
// the detected orientation, the dominant edge directions and their
// perpendiculars, then the natural edge angles, then a coarse strategic
// sweep.
func BoundaryAngles(o model.Outline, orientation float64, groups []model.AngleGroup, settings model.FitSettings) []float64 {
	s := newAngleSet()
	s.addWithPerpendicular(orientation)
	n := settings.DominantAngleCount
	if n <= 0 || n > len(groups) {
		n = len(groups)
	}
	for _, g := range groups[:n] {
		s.addWithPerpendicular(g.Angle)
	}
	for _, a := range naturalAngles(o) {
		s.add(a)
	}
	s.addSweep(settings.AngleStep)
	for _, a := range verticalProbeAngles {
		s.add(a)
	}
	return s.angles
}

// DenseAngles returns the angle schedule of the dense grid pass: the
// natural edge angles and a sweep at half the strategic step, never
// finer than one degree.
func DenseAngles(o model.Outline, settings model.FitSettings) []float64 {
	s := newAngleSet()
	for _, a := range naturalAngles(o) {
		s.add(a)
	}
	s.addSweep(math.Max(1, settings.AngleStep/2))
	return s.angles
}

// RefinementAngles returns the angles within +/- rng of center at the
// given step, nearest first, excluding center itself.
func RefinementAngles(center, rng, step float64) []float64 {
	if step <= 0 || rng <= 0 {
		return nil
	}
	s := newAngleSet()
	s.seen[int64(math.Round(model.NormalizeAngle180(center)*1e6))] = true
	for d := step; d <= rng+1e-9; d += step {
		s.add(center - d)
		s.add(center + d)
	}
	return s.angles
}
