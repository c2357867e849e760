package engine

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// polygon bundles a cleaned outline with everything the search derives
// from it once per fit.
type polygon struct {
	outline  model.Outline
	min, max model.Point2D
	width    float64
	height   float64
	diag     float64
	area     float64
	ccw      bool
	convex   bool
	tol      float64
	grid     *SpatialGrid
	edges    *EdgeIndex
}

func newPolygon(o model.Outline, tol float64, useGrid bool, cache *GridCache) *polygon {
	min, max := o.BoundingBox()
	p := &polygon{
		outline: o,
		min:     min,
		max:     max,
		width:   max.X - min.X,
		height:  max.Y - min.Y,
		area:    o.Area(),
		ccw:     o.SignedArea() > 0,
		convex:  IsConvex(o),
		tol:     tol,
		edges:   NewEdgeIndex(o),
	}
	p.diag = math.Hypot(p.width, p.height)
	if useGrid {
		if cache != nil {
			p.grid = cache.GetOrBuild(o, tol)
		} else {
			p.grid = NewSpatialGrid(o, tol)
		}
	}
	return p
}

// containsStrict is the plain even-odd test, grid accelerated when available.
func (p *polygon) containsStrict(pt model.Point2D) bool {
	if p.grid != nil {
		return p.grid.ContainsPoint(pt)
	}
	return PointInPolygon(pt, p.outline)
}

// contains is the tolerance-augmented test used for validation samples.
func (p *polygon) contains(pt model.Point2D) bool {
	if p.grid != nil {
		switch p.grid.State(pt) {
		case CellInside:
			return true
		case CellOutside:
			return false
		}
	} else if pt.X < p.min.X-p.tol || pt.X > p.max.X+p.tol || pt.Y < p.min.Y-p.tol || pt.Y > p.max.Y+p.tol {
		return false
	}
	if PointInPolygon(pt, p.outline) {
		return true
	}
	return p.tol > 0 && p.edges.Distance(pt) <= p.tol
}

// center returns the bounding box center.
func (p *polygon) center() model.Point2D {
	return model.Point2D{X: (p.min.X + p.max.X) / 2, Y: (p.min.Y + p.max.Y) / 2}
}

// inwardNormal returns the unit normal of edge ab pointing into the polygon.
func (p *polygon) inwardNormal(a, b model.Point2D) model.Point2D {
	l := a.Dist(b)
	if l == 0 {
		return model.Point2D{}
	}
	dx := (b.X - a.X) / l
	dy := (b.Y - a.Y) / l
	if p.ccw {
		return model.Point2D{X: -dy, Y: dx}
	}
	return model.Point2D{X: dy, Y: -dx}
}

// IsConvex reports whether every turn of the outline has the same sign.
// Collinear vertices are ignored.
func IsConvex(o model.Outline) bool {
	n := len(o)
	if n < 4 {
		return n == 3
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		c := cross(o[i], o[(i+1)%n], o[(i+2)%n])
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// cleanOutline drops consecutive duplicate vertices (including a
// trailing copy of the first vertex) and collinear vertices. Zero-width
// spikes are collinear too and get removed the same way.
func cleanOutline(o model.Outline) model.Outline {
	if len(o) == 0 {
		return nil
	}
	min, max := o.BoundingBox()
	scale := math.Max(max.X-min.X, max.Y-min.Y)
	dupEps := 1e-12 * math.Max(scale, 1)

	pts := make(model.Outline, 0, len(o))
	for _, p := range o {
		if len(pts) > 0 && pts[len(pts)-1].Dist(p) <= dupEps {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && pts[0].Dist(pts[len(pts)-1]) <= dupEps {
		pts = pts[:len(pts)-1]
	}

	for changed := true; changed && len(pts) >= 3; {
		changed = false
		n := len(pts)
		kept := make(model.Outline, 0, n)
		for i := 0; i < n; i++ {
			prev := pts[(i+n-1)%n]
			cur := pts[i]
			next := pts[(i+1)%n]
			if math.Abs(cross(prev, cur, next)) <= 1e-9*prev.Dist(cur)*cur.Dist(next) {
				changed = true
				continue
			}
			kept = append(kept, cur)
		}
		pts = kept
	}
	return pts
}
