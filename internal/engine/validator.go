package engine

import (
	"github.com/piwi3910/RectFit/internal/model"
)

// Sample counts per validation density.
var (
	edgeSamples = map[model.SampleDensity]int{
		model.DensitySparse:     8,
		model.DensityStandard:   16,
		model.DensityDense:      48,
		model.DensityExhaustive: 48,
	}
	latticeSize = map[model.SampleDensity]int{
		model.DensitySparse:     3,
		model.DensityStandard:   3,
		model.DensityDense:      7,
		model.DensityExhaustive: 7,
	}
)

// Shrink factors tried, in order, when a candidate fails exhaustive
// validation.
var shrinkFactors = []float64{0.9, 0.8, 0.7, 0.6, 0.5}

// edgeExpansionIterations is the binary search depth per side.
const edgeExpansionIterations = 16

// Validator decides whether a rectangle lies inside one polygon.
//
// Approximate densities sample the rectangle perimeter and an interior
// lattice. Sample positions are nested: every point tested at one
// density is also tested at each higher density, so a rectangle accepted
// at a higher density is accepted at every lower one. The Exhaustive
// density adds an exact edge intersection test.
type Validator struct {
	poly    *polygon
	density model.SampleDensity
}

// NewValidator prepares a validator for the outline using the density,
// tolerance and grid options in settings.
func NewValidator(o model.Outline, settings model.FitSettings) *Validator {
	return newValidator(newPolygon(o, settings.BoundaryTolerance, settings.UseSpatialGrid, nil), settings.SampleDensity)
}

func newValidator(p *polygon, density model.SampleDensity) *Validator {
	return &Validator{poly: p, density: density}
}

// Validate checks r at the configured density.
func (v *Validator) Validate(r model.Rectangle) bool {
	return v.ValidateAt(r, v.density)
}

// ValidateAt checks r at the given density.
func (v *Validator) ValidateAt(r model.Rectangle, density model.SampleDensity) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	if !v.samplesInside(r, density) {
		return false
	}
	if density >= model.DensityExhaustive {
		return v.exact(r)
	}
	return true
}

func (v *Validator) samplesInside(r model.Rectangle, density model.SampleDensity) bool {
	p := v.poly
	if !p.contains(r.Center) {
		return false
	}

	n := edgeSamples[density]
	for i := 0; i < 4; i++ {
		a, b := r.Corners[i], r.Corners[(i+1)%4]
		for k := 0; k < n; k++ {
			t := float64(k) / float64(n)
			pt := model.Point2D{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			if !p.contains(pt) {
				return false
			}
		}
	}

	m := latticeSize[density]
	for i := 1; i <= m; i++ {
		fx := float64(i) / float64(m+1)
		for j := 1; j <= m; j++ {
			fy := float64(j) / float64(m+1)
			local := model.Point2D{X: r.Width * (fx - 0.5), Y: r.Height * (fy - 0.5)}
			if !p.contains(r.ToWorld(local)) {
				return false
			}
		}
	}
	return true
}

// exact maps every polygon edge into the rectangle's frame and rejects
// the rectangle if any edge reaches into it deeper than the tolerance.
// With no edge inside, the rectangle is wholly inside or wholly outside,
// and the center sample already decided which.
func (v *Validator) exact(r model.Rectangle) bool {
	p := v.poly
	hw := r.Width/2 - p.tol
	hh := r.Height/2 - p.tol
	if hw <= 0 || hh <= 0 {
		return true
	}
	o := p.outline
	n := len(o)
	prev := r.ToLocal(o[n-1])
	for i := 0; i < n; i++ {
		cur := r.ToLocal(o[i])
		if segmentTouchesBox(prev, cur, -hw, -hh, hw, hh) {
			return false
		}
		prev = cur
	}
	return true
}

// ShrinkToFit scales r about its center by 0.9, 0.8, 0.7, 0.6 and 0.5
// and returns the first result that passes exhaustive validation.
func (v *Validator) ShrinkToFit(r model.Rectangle) (model.Rectangle, bool) {
	for _, f := range shrinkFactors {
		s := r.Scaled(f)
		if v.ValidateAt(s, model.DensityExhaustive) {
			return s, true
		}
	}
	return model.Rectangle{}, false
}

// ExpandEdges pushes each side of r outward along its normal by the
// largest distance up to limit that keeps the rectangle valid, with the
// other three sides fixed. All four pushes are then applied together.
// If the combined rectangle fails exhaustive validation, the pushes are
// instead applied one side at a time, each re-searched against the
// rectangle so far. The result is returned only if it is larger than r.
func (v *Validator) ExpandEdges(r model.Rectangle, limit float64) (model.Rectangle, bool) {
	if limit <= 0 || !v.ValidateAt(r, model.DensityExhaustive) {
		return r, false
	}

	var push [4]float64
	for side := range push {
		push[side] = v.maxPush(r, side, limit)
	}
	if grown := growSides(r, push); grown.Area > r.Area && v.ValidateAt(grown, model.DensityExhaustive) {
		return grown, true
	}

	cur := r
	for side := 0; side < 4; side++ {
		var one [4]float64
		one[side] = v.maxPush(cur, side, limit)
		if one[side] > 0 {
			cur = growSides(cur, one)
		}
	}
	if cur.Area <= r.Area {
		return r, false
	}
	return cur, true
}

// maxPush binary searches how far one side of r can move outward. The
// boundary tolerance is taken off the result so a side flush with an
// edge never ends up beyond it.
func (v *Validator) maxPush(r model.Rectangle, side int, limit float64) float64 {
	var d [4]float64
	valid := func(x float64) bool {
		d[side] = x
		return v.ValidateAt(growSides(r, d), model.DensityExhaustive)
	}
	if valid(limit) {
		return limit
	}
	lo, hi := 0.0, limit
	for i := 0; i < edgeExpansionIterations; i++ {
		mid := (lo + hi) / 2
		if valid(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	if lo -= v.poly.tol; lo < 0 {
		return 0
	}
	return lo
}

// growSides moves the right, left, top and bottom sides of r (in its own
// frame) outward by d[0..3].
func growSides(r model.Rectangle, d [4]float64) model.Rectangle {
	right, left, top, bottom := d[0], d[1], d[2], d[3]
	u, v := r.Axes()
	shift := u.Scale((right - left) / 2).Add(v.Scale((top - bottom) / 2))
	return model.NewRectangle(r.Center.Add(shift), r.AngleDeg, r.Width+right+left, r.Height+top+bottom)
}
