package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/RectFit/internal/model"
)

// Strategy selection thresholds, in polygon units squared.
const (
	smallAreaThreshold = 5000.0
	largeAreaThreshold = 25000.0
)

// Absolute inward offsets from each edge, in polygon units. Relative
// offsets are fractions of the smaller bounding box dimension.
var (
	edgeOffsetPositions = []float64{0.25, 0.5, 0.75}
	edgeOffsetAbsolute  = []float64{10, 25}
	edgeOffsetRelative  = []float64{0.05, 0.15}
	uniformGridSteps    = []int{10, 20}
	fractionalOffsets   = []float64{1.0 / 3, 0.5, 2.0 / 3}
)

const (
	hybridGridSteps = 10
	maxHullSamples  = 30
	dedupDivisor    = 40
)

// SelectStrategy resolves CentroidAuto to a concrete strategy. Shapes
// assembled from many paths, with many vertices, or with extreme sizes
// get the hybrid generator. The rest get the uniform one.
func SelectStrategy(o model.Outline, settings model.FitSettings) model.CentroidStrategy {
	if settings.CentroidStrategy != "" && settings.CentroidStrategy != model.CentroidAuto {
		return settings.CentroidStrategy
	}
	area := o.Area()
	paths := settings.PathCount
	switch {
	case paths >= 6,
		len(o) >= 12,
		area < smallAreaThreshold,
		area > largeAreaThreshold && paths >= 3:
		return model.CentroidHybrid
	}
	return model.CentroidUniform
}

// GenerateCandidates returns the candidate centers the boundary-driven
// search would try for the outline.
func GenerateCandidates(o model.Outline, settings model.FitSettings) []model.Point2D {
	p := newPolygon(o, settings.BoundaryTolerance, settings.UseSpatialGrid, nil)
	pole, _ := p.pole(0)
	return p.candidates(SelectStrategy(o, settings), pole, settings.MaxCandidates)
}

// candidates builds the strategy's raw points, keeps those strictly
// inside, snaps away near duplicates, and orders them by distance from
// the bounding box center. The pole always comes first.
func (p *polygon) candidates(strategy model.CentroidStrategy, pole model.Point2D, limit int) []model.Point2D {
	var raw []model.Point2D
	switch strategy {
	case model.CentroidHybrid:
		raw = p.hybridPoints()
	case model.CentroidPolylabel:
		raw = append(p.standardCentroids(), p.fractionalPoints()...)
	default:
		raw = p.uniformPoints()
	}
	return p.orderCandidates(pole, raw, limit)
}

func (p *polygon) orderCandidates(pole model.Point2D, raw []model.Point2D, limit int) []model.Point2D {
	snap := math.Max(p.width, p.height) / dedupDivisor
	if snap <= 0 {
		snap = 1
	}
	type cellKey struct{ x, y int64 }
	seen := make(map[cellKey]bool)
	keyOf := func(pt model.Point2D) cellKey {
		return cellKey{int64(math.Round(pt.X / snap)), int64(math.Round(pt.Y / snap))}
	}

	var out []model.Point2D
	hasPole := p.containsStrict(pole)
	if hasPole {
		seen[keyOf(pole)] = true
	}
	for _, pt := range raw {
		if !p.containsStrict(pt) {
			continue
		}
		k := keyOf(pt)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, pt)
	}

	c := p.center()
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Dist(c), out[j].Dist(c)
		if di != dj {
			return di < dj
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	if hasPole {
		out = append([]model.Point2D{pole}, out...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// standardCentroids returns the area centroid, vertex average and
// bounding box center.
func (p *polygon) standardCentroids() []model.Point2D {
	return []model.Point2D{areaCentroid(p.outline), p.outline.VertexCentroid(), p.center()}
}

// fractionalPoints places points at thirds and halves of the bounding box.
func (p *polygon) fractionalPoints() []model.Point2D {
	var pts []model.Point2D
	for _, fx := range fractionalOffsets {
		for _, fy := range fractionalOffsets {
			pts = append(pts, model.Point2D{X: p.min.X + fx*p.width, Y: p.min.Y + fy*p.height})
		}
	}
	return pts
}

// gridPoints places points at the centers of a steps x steps grid over
// the bounding box.
func (p *polygon) gridPoints(steps int) []model.Point2D {
	pts := make([]model.Point2D, 0, steps*steps)
	for i := 0; i < steps; i++ {
		x := p.min.X + (float64(i)+0.5)*p.width/float64(steps)
		for j := 0; j < steps; j++ {
			y := p.min.Y + (float64(j)+0.5)*p.height/float64(steps)
			pts = append(pts, model.Point2D{X: x, Y: y})
		}
	}
	return pts
}

func (p *polygon) uniformPoints() []model.Point2D {
	var pts []model.Point2D
	for _, steps := range uniformGridSteps {
		pts = append(pts, p.gridPoints(steps)...)
	}
	pts = append(pts, p.standardCentroids()...)
	return append(pts, p.fractionalPoints()...)
}

func (p *polygon) hybridPoints() []model.Point2D {
	pts := p.edgeOffsetPoints()
	pts = append(pts, p.gridPoints(hybridGridSteps)...)
	pts = append(pts, p.hullPoints()...)
	return append(pts, p.standardCentroids()...)
}

// edgeOffsetPoints steps inward from positions along every edge.
func (p *polygon) edgeOffsetPoints() []model.Point2D {
	minDim := math.Min(p.width, p.height)
	offsets := append([]float64(nil), edgeOffsetAbsolute...)
	for _, f := range edgeOffsetRelative {
		offsets = append(offsets, f*minDim)
	}

	var pts []model.Point2D
	o := p.outline
	n := len(o)
	for i := 0; i < n; i++ {
		a, b := o[i], o[(i+1)%n]
		normal := p.inwardNormal(a, b)
		if normal == (model.Point2D{}) {
			continue
		}
		for _, t := range edgeOffsetPositions {
			base := model.Point2D{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			for _, off := range offsets {
				if off <= 0 {
					continue
				}
				pts = append(pts, base.Add(normal.Scale(off)))
			}
		}
	}
	return pts
}

// hullPoints samples a third and two thirds of the way from the hull
// centroid toward each hull vertex.
func (p *polygon) hullPoints() []model.Point2D {
	hull := ComputeConvexHull(p.outline)
	if len(hull) < 3 {
		return nil
	}
	c := areaCentroid(hull)
	var pts []model.Point2D
	for _, v := range hull {
		for _, f := range []float64{1.0 / 3, 2.0 / 3} {
			if len(pts) >= maxHullSamples {
				return pts
			}
			pts = append(pts, c.Add(v.Sub(c).Scale(f)))
		}
	}
	return pts
}

// denseCandidates returns a uniform grid of inside points, as many as
// fit under limit.
func (p *polygon) denseCandidates(limit int) []model.Point2D {
	if limit <= 0 {
		limit = 400
	}
	fill := 1.0
	if box := p.width * p.height; box > 0 {
		fill = math.Max(p.area/box, 0.05)
	}
	steps := int(math.Ceil(math.Sqrt(float64(limit) / fill)))
	if steps < 2 {
		steps = 2
	}
	var out []model.Point2D
	for _, pt := range p.gridPoints(steps) {
		if p.containsStrict(pt) {
			out = append(out, pt)
		}
	}
	if len(out) > limit {
		// Thin evenly rather than truncating one side of the grid.
		thinned := make([]model.Point2D, 0, limit)
		for i := 0; i < limit; i++ {
			thinned = append(thinned, out[i*len(out)/limit])
		}
		out = thinned
	}
	return out
}
