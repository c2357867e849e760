package engine

import (
	"context"
	"time"

	"github.com/piwi3910/RectFit/internal/model"
)

// searchPass runs one angle-major sweep over a fixed set of centers.
type searchPass struct {
	stage     string
	poly      *polygon
	validator *Validator
	fitter    *fitter
	ratios    []float64
	settings  model.FitSettings
	tracer    Tracer
	deadline  time.Time
}

// passResult is the outcome of a searchPass. best is always exhaustively
// validated when found is set.
type passResult struct {
	best      model.Rectangle
	found     bool
	truncated bool
	fits      int
}

func (s *searchPass) expired(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

// run tries every center at every angle, then refines around the best
// angle found. floor is the area the pass must beat. Every improvement
// is validated exhaustively before it is kept, so a budget cut at any
// point leaves a valid best.
func (s *searchPass) run(ctx context.Context, centers []model.Point2D, angles []float64, floor float64) passResult {
	start := time.Now()
	s.tracer.Trace(Event{Kind: EventStageStart, Stage: s.stage, Candidates: len(centers), Angles: len(angles)})

	res := passResult{best: model.Rectangle{Area: floor}}
	for _, angle := range angles {
		if !s.tryAngle(ctx, angle, centers, &res) {
			break
		}
	}
	if res.found && !res.truncated {
		for _, angle := range RefinementAngles(res.best.AngleDeg, s.settings.RefinementRange, s.settings.RefinementStep) {
			if !s.tryAngle(ctx, angle, centers, &res) {
				break
			}
		}
	}
	if res.truncated {
		s.tracer.Trace(Event{Kind: EventTruncated, Stage: s.stage, Area: res.best.Area, Elapsed: time.Since(start)})
	}
	if !res.found {
		res.best = model.Rectangle{}
	}
	s.tracer.Trace(Event{Kind: EventStageEnd, Stage: s.stage, Area: res.best.Area, Elapsed: time.Since(start)})
	return res
}

// tryAngle fits every center at one angle. It returns false once the
// budget is spent.
func (s *searchPass) tryAngle(ctx context.Context, angle float64, centers []model.Point2D, res *passResult) bool {
	for _, c := range centers {
		if s.expired(ctx) {
			res.truncated = true
			return false
		}
		res.fits++
		r, ok := s.fitter.FitAtAngle(c, angle, s.ratios, res.best.Area)
		if !ok {
			continue
		}
		s.accept(r, res)
	}
	return true
}

func (s *searchPass) accept(r model.Rectangle, res *passResult) {
	if r.Area <= res.best.Area {
		return
	}
	if !s.validator.ValidateAt(r, model.DensityExhaustive) {
		shrunk, ok := s.validator.ShrinkToFit(r)
		s.tracer.Trace(Event{Kind: EventShrink, Stage: s.stage, Angle: r.AngleDeg, Area: shrunk.Area})
		if !ok || shrunk.Area <= res.best.Area {
			return
		}
		r = shrunk
	}
	res.best = r
	res.found = true
	s.tracer.Trace(Event{Kind: EventNewBest, Stage: s.stage, Angle: r.AngleDeg, Area: r.Area})
}
