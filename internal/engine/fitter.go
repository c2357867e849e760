package engine

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// fitter grows rectangles at a fixed center and angle.
type fitter struct {
	poly      *polygon
	validator *Validator
	precision float64
	maxIter   int
}

func newFitter(p *polygon, v *Validator, settings model.FitSettings) *fitter {
	f := &fitter{
		poly:      p,
		validator: v,
		precision: settings.BinarySearchPrecision,
		maxIter:   settings.BinarySearchMaxIterations,
	}
	if f.precision <= 0 {
		f.precision = 1e-4
	}
	if f.maxIter <= 0 {
		f.maxIter = 18
	}
	return f
}

// rect returns the rectangle at scale s for ratio r. Width is
// base*s*sqrt(r) and height base*s/sqrt(r), so the area base²s² does
// not depend on the ratio.
func (f *fitter) rect(center model.Point2D, angle, sqrtRatio, s float64) model.Rectangle {
	base := f.poly.diag
	return model.NewRectangle(center, angle, base*s*sqrtRatio, base*s/sqrtRatio)
}

// FitAtAngle returns the largest rectangle, over all ratios, centered on
// center at the given angle that passes validation and beats bestArea.
//
// For each ratio the scale is binary searched between a lower bound
// that is valid by construction and 1. The lower bound is the largest
// rectangle inside the disk of radius d around the center, where d is
// the distance to the nearest edge. When bestArea is set, the scale that
// would only tie it is tested first and the ratio is abandoned if it
// fails.
func (f *fitter) FitAtAngle(center model.Point2D, angle float64, ratios []float64, bestArea float64) (model.Rectangle, bool) {
	p := f.poly
	if p.diag <= 0 || !p.containsStrict(center) {
		return model.Rectangle{}, false
	}
	d := p.edges.Distance(center)
	base := p.diag

	var best model.Rectangle
	found := false
	for _, ratio := range ratios {
		if ratio <= 0 {
			continue
		}
		sr := math.Sqrt(ratio)
		lo := 2 * d / (base * math.Sqrt(ratio+1/ratio))
		hi := 1.0

		floorArea := math.Max(bestArea, best.Area)
		if floorArea > 0 {
			sFloor := math.Sqrt(floorArea) / base
			if sFloor >= hi {
				continue
			}
			if sFloor > lo {
				if !f.validator.Validate(f.rect(center, angle, sr, sFloor)) {
					continue
				}
				lo = sFloor
			}
		}

		if f.validator.Validate(f.rect(center, angle, sr, hi)) {
			lo = hi
		} else {
			for i := 0; i < f.maxIter && hi-lo > f.precision; i++ {
				mid := (lo + hi) / 2
				if f.validator.Validate(f.rect(center, angle, sr, mid)) {
					lo = mid
				} else {
					hi = mid
				}
			}
		}
		if lo <= 0 {
			continue
		}
		r := f.rect(center, angle, sr, lo)
		if r.Area > floorArea {
			best = r
			found = true
		}
	}
	return best, found
}
