package engine

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/RectFit/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.FitSettings
}

// ComparisonResult holds the fit result and derived figures for a
// single scenario. Err is set when the scenario found nothing.
type ComparisonResult struct {
	Scenario  ComparisonScenario
	Result    model.FitResult
	Area      float64
	Coverage  float64 // Rectangle area as a percentage of polygon area
	Elapsed   time.Duration
	Truncated bool
	Err       error
}

// CompareScenarios fits the outline once per scenario and returns the
// results in scenario order. This enables side-by-side comparison of
// search parameters (sweep step, ratio sets, dense search, etc.).
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, outline model.Outline, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	polyArea := outline.Area()

	for _, scenario := range scenarios {
		res, err := New(scenario.Settings, opts...).Fit(ctx, outline)

		coverage := 0.0
		if err == nil && polyArea > 0 {
			coverage = 100 * res.Rectangle.Area / polyArea
		}
		results = append(results, ComparisonResult{
			Scenario:  scenario,
			Result:    res,
			Area:      res.Rectangle.Area,
			Coverage:  coverage,
			Elapsed:   res.Elapsed,
			Truncated: res.Truncated,
			Err:       err,
		})
	}
	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if alternatives.
func BuildDefaultScenarios(base model.FitSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: Coarser strategic sweep
	sparse := base
	sparse.AngleStep = base.AngleStep * 2
	if sparse.AngleStep <= 0 {
		sparse.AngleStep = 16
	}
	sparse.AspectRatios = append([]float64(nil), base.AspectRatios...)
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Sweep %.0f° steps", sparse.AngleStep),
		Settings: sparse,
	})

	// Scenario: Near-square ratios only
	narrow := base
	narrow.AspectRatios = []float64{0.7, 1.0, 1.4}
	narrow.ConcaveAspectRatios = []float64{0.7, 1.0, 1.4}
	scenarios = append(scenarios, ComparisonScenario{
		Name:     "Narrow Ratios",
		Settings: narrow,
	})

	// Scenario: No edge expansion
	if base.EdgeExpansion {
		noExpand := base
		noExpand.EdgeExpansion = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Edge Expansion",
			Settings: noExpand,
		})
	}

	// Scenario: Always run the dense pass
	if !base.ForceDenseSearch {
		dense := base
		dense.ForceDenseSearch = true
		dense.SkipDenseSearch = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Forced Dense Search",
			Settings: dense,
		})
	}

	return scenarios
}

// ComparisonSummary aggregates a set of comparison results.
type ComparisonSummary struct {
	Runs          int
	Failures      int
	MeanArea      float64
	StdDevArea    float64
	MeanElapsedMs float64
	StdDevElapsed float64
	Best          string // Scenario name with the largest area
}

// Summarize computes mean and standard deviation of area and elapsed
// time over the successful results.
func Summarize(results []ComparisonResult) ComparisonSummary {
	sum := ComparisonSummary{Runs: len(results)}
	var areas, elapsed []float64
	bestArea := 0.0
	for _, r := range results {
		if r.Err != nil {
			sum.Failures++
			continue
		}
		areas = append(areas, r.Area)
		elapsed = append(elapsed, float64(r.Elapsed)/float64(time.Millisecond))
		if r.Area > bestArea {
			bestArea = r.Area
			sum.Best = r.Scenario.Name
		}
	}
	switch len(areas) {
	case 0:
		return sum
	case 1:
		sum.MeanArea = areas[0]
		sum.MeanElapsedMs = elapsed[0]
		return sum
	}
	sum.MeanArea, sum.StdDevArea = stat.MeanStdDev(areas, nil)
	sum.MeanElapsedMs, sum.StdDevElapsed = stat.MeanStdDev(elapsed, nil)
	return sum
}
