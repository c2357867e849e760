package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/RectFit/internal/model"
)

// ExtractEdges returns the outline's non-degenerate edges sorted by
// length descending. Equal lengths keep outline order.
func ExtractEdges(o model.Outline) []model.Edge {
	n := len(o)
	edges := make([]model.Edge, 0, n)
	for i := 0; i < n; i++ {
		a, b := o[i], o[(i+1)%n]
		l := a.Dist(b)
		if l == 0 {
			continue
		}
		edges = append(edges, model.Edge{
			Index:  i,
			Start:  a,
			End:    b,
			Length: l,
			Angle:  edgeAngle(a, b),
		})
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Length > edges[j].Length
	})
	return edges
}

// edgeAngle returns the undirected angle of ab in degrees, in [0, 180).
func edgeAngle(a, b model.Point2D) float64 {
	return model.NormalizeAngle180(math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi)
}

// FindDominantAngles groups edges whose angles agree within tolerance
// degrees and returns the groups sorted by total length descending.
// Edges are visited longest first, so each group's angle is its
// longest member's angle.
func FindDominantAngles(edges []model.Edge, tolerance float64) []model.AngleGroup {
	ordered := append([]model.Edge(nil), edges...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Length > ordered[j].Length
	})

	var groups []model.AngleGroup
	for _, e := range ordered {
		matched := false
		for gi := range groups {
			if model.AngularDistance(groups[gi].Angle, e.Angle) <= tolerance {
				groups[gi].TotalLength += e.Length
				groups[gi].EdgeCount++
				matched = true
				break
			}
		}
		if !matched {
			groups = append(groups, model.AngleGroup{
				Angle:       e.Angle,
				TotalLength: e.Length,
				EdgeCount:   1,
			})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalLength > groups[j].TotalLength
	})
	return groups
}

// ComputeConvexHull returns the convex hull of the points in
// counterclockwise order using a Graham scan. Collinear points on the
// hull boundary are dropped. Inputs of either winding are accepted.
func ComputeConvexHull(points []model.Point2D) []model.Point2D {
	if len(points) < 3 {
		return append([]model.Point2D(nil), points...)
	}

	// Pivot: lowest y, then lowest x
	pivot := points[0]
	for _, p := range points[1:] {
		if p.Y < pivot.Y || (p.Y == pivot.Y && p.X < pivot.X) {
			pivot = p
		}
	}

	rest := make([]model.Point2D, 0, len(points)-1)
	for _, p := range points {
		if p != pivot {
			rest = append(rest, p)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		c := cross(pivot, rest[i], rest[j])
		if c != 0 {
			return c > 0
		}
		return pivot.Dist(rest[i]) < pivot.Dist(rest[j])
	})

	hull := []model.Point2D{pivot}
	for _, p := range rest {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		if len(hull) > 0 && hull[len(hull)-1] == p {
			continue
		}
		hull = append(hull, p)
	}
	return hull
}
