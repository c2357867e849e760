package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"time"

	"github.com/piwi3910/RectFit/internal/model"
)

var (
	// ErrInvalidPolygon is returned for outlines with fewer than 3 points.
	ErrInvalidPolygon = errors.New("polygon needs at least 3 points")
	// ErrDegeneratePolygon is returned when nothing with area remains
	// after duplicate and collinear vertices are removed.
	ErrDegeneratePolygon = errors.New("polygon has no area")
	// ErrNoFeasibleRectangle is returned when no candidate validated.
	ErrNoFeasibleRectangle = errors.New("no rectangle fits inside the polygon")
)

// edgeExpansionMaxVertices limits the edge expansion post-pass to
// simple outlines.
const edgeExpansionMaxVertices = 10

// Stage names used in trace events.
const (
	stageClosedForm = "closed_form"
	stageBoundary   = "boundary"
	stageDense      = "dense"
	stageExpansion  = "expansion"
)

// Optimizer finds the largest rectangle, at any rotation, inside a
// polygon.
type Optimizer struct {
	Settings model.FitSettings
	cache    *GridCache
	tracer   Tracer
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithCache shares a grid cache across fits of the same outlines.
func WithCache(c *GridCache) Option {
	return func(o *Optimizer) { o.cache = c }
}

// WithTracer sends search events to t.
func WithTracer(t Tracer) Option {
	return func(o *Optimizer) { o.tracer = t }
}

func New(settings model.FitSettings, opts ...Option) *Optimizer {
	o := &Optimizer{Settings: settings}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// candidate is a validated rectangle and the stage that produced it.
type candidate struct {
	rect   model.Rectangle
	method model.Method
	ok     bool
}

// offer replaces c with r when r is strictly larger, so on equal areas
// the earlier stage wins.
func (c *candidate) offer(r model.Rectangle, m model.Method) {
	if !c.ok || r.Area > c.rect.Area {
		*c = candidate{rect: r, method: m, ok: true}
	}
}

// Fit runs the closed-form paths, the boundary-driven search and, when
// needed, the dense grid search, and returns the largest validated
// rectangle in canonical form.
//
// Running out of time or a cancelled context is not an error: the best
// rectangle found so far is returned with Truncated set. An error is
// returned only when the input is unusable or nothing validated.
func (o *Optimizer) Fit(ctx context.Context, outline model.Outline) (model.FitResult, error) {
	start := time.Now()
	if len(outline) < 3 {
		return model.FitResult{}, ErrInvalidPolygon
	}
	clean := cleanOutline(outline)
	if len(clean) < 3 || clean.Area() == 0 {
		return model.FitResult{}, ErrDegeneratePolygon
	}

	s := o.settings()
	tracer := o.traceTarget(s)
	poly := newPolygon(clean, s.BoundaryTolerance, s.UseSpatialGrid, o.cache)
	validator := newValidator(poly, s.SampleDensity)
	orientation := DetectOrientation(clean)

	var best candidate
	if len(clean) == 4 {
		if cf, ok := o.closedForm(poly, validator, orientation, s, tracer); ok {
			best = cf
			if cf.rect.Area >= s.CoverageThreshold*poly.area {
				return o.finish(best, start, false), nil
			}
		}
	}

	ratios := s.AspectRatios
	if !poly.convex && len(s.ConcaveAspectRatios) > 0 {
		ratios = s.ConcaveAspectRatios
	}
	pole, _ := poly.pole(0)

	boundary := (&searchPass{
		stage:     stageBoundary,
		poly:      poly,
		validator: validator,
		fitter:    newFitter(poly, validator, s),
		ratios:    ratios,
		settings:  s,
		tracer:    tracer,
		deadline:  start.Add(s.MaxTime()),
	}).run(ctx,
		poly.candidates(SelectStrategy(clean, s), pole, s.MaxCandidates),
		BoundaryAngles(clean, orientation, FindDominantAngles(ExtractEdges(clean), s.AngleTolerance), s),
		best.rect.Area)
	if boundary.found {
		best.offer(boundary.best, model.MethodBoundary)
	}
	truncated := boundary.truncated

	if o.needDense(best, s) {
		denseStart := time.Now()
		centers := append([]model.Point2D{pole}, poly.denseCandidates(s.DenseMaxCandidates)...)
		if !poly.containsStrict(pole) {
			centers = centers[1:]
		}
		dense := (&searchPass{
			stage:     stageDense,
			poly:      poly,
			validator: validator,
			fitter:    newFitter(poly, validator, s),
			ratios:    ratios,
			settings:  s,
			tracer:    tracer,
			deadline:  denseStart.Add(s.DenseMaxTime()),
		}).run(ctx, centers, DenseAngles(clean, s), best.rect.Area)
		if dense.found {
			best.offer(dense.best, model.MethodDenseGrid)
		}
		truncated = truncated || dense.truncated
	} else {
		tracer.Trace(Event{Kind: EventSkip, Stage: stageDense, Area: best.rect.Area})
	}

	if !best.ok {
		return model.FitResult{Elapsed: time.Since(start), Truncated: truncated}, ErrNoFeasibleRectangle
	}

	if s.EdgeExpansion && len(clean) <= edgeExpansionMaxVertices {
		limit := math.Min(s.MaxExpansion, poly.diag)
		if grown, ok := validator.ExpandEdges(best.rect, limit); ok {
			tracer.Trace(Event{Kind: EventExpansion, Stage: stageExpansion, Area: grown.Area})
			best.rect = grown
		}
	}
	return o.finish(best, start, truncated), nil
}

// needDense decides whether the dense grid pass runs. It always runs
// when nothing has validated yet.
func (o *Optimizer) needDense(best candidate, s model.FitSettings) bool {
	if !best.ok || s.ForceDenseSearch {
		return true
	}
	if s.SkipDenseSearch {
		return false
	}
	return !(s.TargetArea > 0 && best.rect.Area >= s.CoverageThreshold*s.TargetArea)
}

// closedForm tries the parallelogram and trapezoid formulas and returns
// the largest candidate that passes exhaustive validation.
func (o *Optimizer) closedForm(p *polygon, v *Validator, orientation float64, s model.FitSettings, tracer Tracer) (candidate, bool) {
	var best candidate
	if r, ok := FitParallelogram(p.outline, orientation); ok && v.ValidateAt(r, model.DensityExhaustive) {
		best.offer(r, model.MethodParallelogram)
	}
	for _, r := range FitTrapezoid(p.outline, s.AngleTolerance) {
		if v.ValidateAt(r, model.DensityExhaustive) {
			best.offer(r, model.MethodTrapezoid)
		}
	}
	if best.ok {
		tracer.Trace(Event{Kind: EventClosedForm, Stage: stageClosedForm, Angle: best.rect.AngleDeg, Area: best.rect.Area, Message: string(best.method)})
	}
	return best, best.ok
}

func (o *Optimizer) finish(best candidate, start time.Time, truncated bool) model.FitResult {
	return model.FitResult{
		Rectangle: best.rect.Canonical(),
		Method:    best.method,
		Elapsed:   time.Since(start),
		Truncated: truncated,
	}
}

func (o *Optimizer) traceTarget(s model.FitSettings) Tracer {
	switch {
	case o.tracer != nil:
		return o.tracer
	case s.DebugMode:
		return NewSlogTracer(Logger())
	}
	return nopTracer{}
}

// settings returns the options used for one fit. A zero FitSettings
// means model.DefaultSettings(). Otherwise only the budgets, steps,
// ratios and thresholds are defaulted when unset. BoundaryTolerance,
// SampleDensity, UseSpatialGrid, RefinementRange and the boolean
// switches keep their zero meaning: exact containment, sparse sampling,
// no grid, no refinement.
func (o *Optimizer) settings() model.FitSettings {
	d := model.DefaultSettings()
	if reflect.ValueOf(o.Settings).IsZero() {
		return d
	}
	s := o.Settings
	if s.MaxTimeMs <= 0 {
		s.MaxTimeMs = d.MaxTimeMs
	}
	if s.DenseMaxTimeMs <= 0 {
		s.DenseMaxTimeMs = d.DenseMaxTimeMs
	}
	if len(s.AspectRatios) == 0 {
		s.AspectRatios = d.AspectRatios
	}
	if s.AngleStep <= 0 {
		s.AngleStep = d.AngleStep
	}
	if s.RefinementStep <= 0 {
		s.RefinementStep = d.RefinementStep
	}
	if s.AngleTolerance <= 0 {
		s.AngleTolerance = d.AngleTolerance
	}
	if s.CoverageThreshold <= 0 {
		s.CoverageThreshold = d.CoverageThreshold
	}
	if s.BoundaryTolerance < 0 {
		s.BoundaryTolerance = 0
	}
	if s.DenseMaxCandidates <= 0 {
		s.DenseMaxCandidates = d.DenseMaxCandidates
	}
	return s
}
