package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/RectFit/internal/model"
)

// DetectOrientation returns the edge angle that, once the outline is
// rotated to lay that edge horizontal, gives the widest bounding box.
// Candidate angles are the unique edge angles, tried in ascending order.
// Ties keep the smaller angle.
func DetectOrientation(o model.Outline) float64 {
	angles := uniqueEdgeAngles(o, 1e-6)
	best := 0.0
	bestWidth := -1.0
	center := o.VertexCentroid()
	for _, a := range angles {
		rotated := o.Rotate(-a*math.Pi/180, center)
		min, max := rotated.BoundingBox()
		if w := max.X - min.X; w > bestWidth+1e-9 {
			bestWidth = w
			best = a
		}
	}
	return best
}

// uniqueEdgeAngles returns the distinct edge angles of the outline,
// rounded to precision, sorted ascending.
func uniqueEdgeAngles(o model.Outline, precision float64) []float64 {
	seen := make(map[int64]bool)
	var angles []float64
	n := len(o)
	for i := 0; i < n; i++ {
		a, b := o[i], o[(i+1)%n]
		if a == b {
			continue
		}
		ang := edgeAngle(a, b)
		key := int64(math.Round(ang / precision))
		if seen[key] {
			continue
		}
		seen[key] = true
		angles = append(angles, ang)
	}
	sort.Float64s(angles)
	return angles
}
