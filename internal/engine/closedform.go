package engine

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// Parallelogram side-length tolerances, in polygon units. Both shrink
// for small outlines so unit-scale input is not always "equal".
const (
	parallelogramLengthTolerance = 5.0
	pairAverageTolerance         = 1.0
)

// FitParallelogram returns the closed-form rectangle for a 4-vertex
// outline whose opposite sides have equal length. The rectangle is
// oriented along the side pair closest to orientation (degrees). Its
// sides are the pair lengths: the average when a pair agrees closely,
// otherwise the shorter member. It is centered on the vertex centroid.
//
// The result is a proposal. Only a rectangular quadrilateral is
// guaranteed to contain it, so the caller must validate.
func FitParallelogram(o model.Outline, orientation float64) (model.Rectangle, bool) {
	if len(o) != 4 {
		return model.Rectangle{}, false
	}
	var lengths, angles [4]float64
	for i := 0; i < 4; i++ {
		a, b := o[i], o[(i+1)%4]
		lengths[i] = a.Dist(b)
		angles[i] = edgeAngle(a, b)
		if lengths[i] == 0 {
			return model.Rectangle{}, false
		}
	}
	mean := (lengths[0] + lengths[1] + lengths[2] + lengths[3]) / 4
	lenTol := math.Min(parallelogramLengthTolerance, 0.05*mean)
	if math.Abs(lengths[0]-lengths[2]) >= lenTol || math.Abs(lengths[1]-lengths[3]) >= lenTol {
		return model.Rectangle{}, false
	}

	avgTol := math.Min(pairAverageTolerance, 0.01*mean)
	pairA := pairLength(lengths[0], lengths[2], avgTol)
	pairB := pairLength(lengths[1], lengths[3], avgTol)

	angle, width, height := angles[0], pairA, pairB
	if model.AngularDistance(angles[1], orientation) < model.AngularDistance(angles[0], orientation) {
		angle, width, height = angles[1], pairB, pairA
	}
	return model.NewRectangle(o.VertexCentroid(), angle, width, height), true
}

func pairLength(a, b, tol float64) float64 {
	if math.Abs(a-b) > tol {
		return math.Min(a, b)
	}
	return (a + b) / 2
}

// FitTrapezoid returns closed-form rectangles for each pair of parallel
// opposite sides (within tolerance degrees) of a 4-vertex outline.
// Width is the shorter parallel side. Height is the full perpendicular
// extent of the outline. The rectangle sits on the shorter side's
// midpoint along the side direction and at the mid perpendicular
// position. As with FitParallelogram the caller validates.
func FitTrapezoid(o model.Outline, tolerance float64) []model.Rectangle {
	if len(o) != 4 {
		return nil
	}
	var rects []model.Rectangle
	for _, pair := range [][2]int{{0, 2}, {1, 3}} {
		e1 := edgeOf(o, pair[0])
		e2 := edgeOf(o, pair[1])
		if e1.Length == 0 || e2.Length == 0 {
			continue
		}
		if model.AngularDistance(e1.Angle, e2.Angle) >= tolerance {
			continue
		}
		short := e1
		if e2.Length < e1.Length {
			short = e2
		}

		sin, cos := math.Sincos(short.Angle * math.Pi / 180)
		u := model.Point2D{X: cos, Y: sin}
		v := model.Point2D{X: -sin, Y: cos}

		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range o {
			d := p.X*v.X + p.Y*v.Y
			minV = math.Min(minV, d)
			maxV = math.Max(maxV, d)
		}
		height := maxV - minV
		if height <= 0 {
			continue
		}

		mid := short.Midpoint()
		cu := mid.X*u.X + mid.Y*u.Y
		cv := (minV + maxV) / 2
		center := model.Point2D{X: u.X*cu + v.X*cv, Y: u.Y*cu + v.Y*cv}
		rects = append(rects, model.NewRectangle(center, short.Angle, short.Length, height))
	}
	return rects
}

func edgeOf(o model.Outline, i int) model.Edge {
	a, b := o[i], o[(i+1)%len(o)]
	return model.Edge{Index: i, Start: a, End: b, Length: a.Dist(b), Angle: edgeAngle(a, b)}
}
