package engine

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// PointInPolygon reports whether p lies inside the outline using the
// even-odd ray casting rule. An edge counts as a crossing when p.Y lies
// in the half-open interval spanned by its endpoints and the edge passes
// to the right of p. Horizontal and zero-length edges never satisfy the
// interval test, so they are skipped without special handling.
func PointInPolygon(p model.Point2D, o model.Outline) bool {
	inside := false
	n := len(o)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsWithTolerance is PointInPolygon that also accepts points
// within eps of any edge.
func ContainsWithTolerance(p model.Point2D, o model.Outline, eps float64) bool {
	if PointInPolygon(p, o) {
		return true
	}
	return eps > 0 && DistanceToBoundary(p, o) <= eps
}

// DistanceToBoundary returns the distance from p to the nearest edge.
func DistanceToBoundary(p model.Point2D, o model.Outline) float64 {
	best := math.Inf(1)
	n := len(o)
	for i := 0; i < n; i++ {
		d := segmentDistance(p, o[i], o[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b model.Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c model.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// clipSegment clips segment ab against the closed axis-aligned box using
// Liang-Barsky. It returns the parametric interval of the segment inside
// the box and false when the segment misses it.
func clipSegment(a, b model.Point2D, minX, minY, maxX, maxY float64) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	dx := b.X - a.X
	dy := b.Y - a.Y
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a.X - minX, maxX - a.X, a.Y - minY, maxY - a.Y}
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return t0, t1, true
}

// segmentTouchesBox reports whether any point of ab lies in the closed box.
func segmentTouchesBox(a, b model.Point2D, minX, minY, maxX, maxY float64) bool {
	_, _, ok := clipSegment(a, b, minX, minY, maxX, maxY)
	return ok
}
