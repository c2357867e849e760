package model

import (
	"fmt"
	"strings"
	"time"
)

// CentroidStrategy selects how candidate rectangle centers are generated.
type CentroidStrategy string

const (
	CentroidAuto      CentroidStrategy = "auto"      // Pick uniform or hybrid from polygon signals
	CentroidUniform   CentroidStrategy = "uniform"   // Two superimposed regular grids plus standard centroids
	CentroidHybrid    CentroidStrategy = "hybrid"    // Edge-offset grid, sparse grid and convex hull samples
	CentroidPolylabel CentroidStrategy = "polylabel" // Pole of inaccessibility plus standard centroids
)

// ParseCentroidStrategy converts a config string into a CentroidStrategy.
func ParseCentroidStrategy(s string) (CentroidStrategy, error) {
	switch CentroidStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CentroidAuto:
		return CentroidAuto, nil
	case CentroidUniform:
		return CentroidUniform, nil
	case CentroidHybrid:
		return CentroidHybrid, nil
	case CentroidPolylabel:
		return CentroidPolylabel, nil
	}
	return "", fmt.Errorf("unknown centroid strategy %q", s)
}

// SampleDensity controls how many points the validator tests. Each level
// tests a superset of the points of the level below it.
type SampleDensity int

const (
	DensitySparse     SampleDensity = iota // 8 samples per edge, 3x3 interior
	DensityStandard                        // 16 samples per edge, 3x3 interior
	DensityDense                           // 48 samples per edge, 7x7 interior
	DensityExhaustive                      // Dense plus exact boundary intersection test
)

func (d SampleDensity) String() string {
	switch d {
	case DensitySparse:
		return "sparse"
	case DensityDense:
		return "dense"
	case DensityExhaustive:
		return "exhaustive"
	default:
		return "standard"
	}
}

// ParseSampleDensity converts a config string into a SampleDensity.
func ParseSampleDensity(s string) (SampleDensity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return DensitySparse, nil
	case "", "standard":
		return DensityStandard, nil
	case "dense":
		return DensityDense, nil
	case "exhaustive":
		return DensityExhaustive, nil
	}
	return DensityStandard, fmt.Errorf("unknown sample density %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d SampleDensity) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *SampleDensity) UnmarshalText(b []byte) error {
	v, err := ParseSampleDensity(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Method records which sub-strategy produced a result.
type Method string

const (
	MethodParallelogram Method = "closed_form_parallelogram"
	MethodTrapezoid     Method = "closed_form_trapezoid"
	MethodBoundary      Method = "boundary_search"
	MethodDenseGrid     Method = "dense_grid_search"
)

// FitSettings holds the engine options.
type FitSettings struct {
	// Time budgets
	MaxTimeMs      int `json:"max_time_ms" mapstructure:"max_time_ms"`             // Boundary-driven search budget
	DenseMaxTimeMs int `json:"dense_max_time_ms" mapstructure:"dense_max_time_ms"` // Dense grid search budget

	// Angle sweep
	AngleStep          float64 `json:"angle_step" mapstructure:"angle_step"`                     // Strategic sweep step in degrees
	RefinementStep     float64 `json:"refinement_step" mapstructure:"refinement_step"`           // Local refinement step in degrees
	RefinementRange    float64 `json:"refinement_range" mapstructure:"refinement_range"`         // +/- range around the best angle
	AngleTolerance     float64 `json:"angle_tolerance" mapstructure:"angle_tolerance"`           // Dominant angle grouping and parallel-edge tolerance
	DominantAngleCount int     `json:"dominant_angle_count" mapstructure:"dominant_angle_count"` // Top-N angle groups fed to the sweep

	// Rectangle fitting
	AspectRatios              []float64 `json:"aspect_ratios" mapstructure:"aspect_ratios"`                 // Width:height ratios for convex shapes
	ConcaveAspectRatios       []float64 `json:"concave_aspect_ratios" mapstructure:"concave_aspect_ratios"` // Wider set for concave shapes
	BinarySearchPrecision     float64   `json:"binary_search_precision" mapstructure:"binary_search_precision"`
	BinarySearchMaxIterations int       `json:"binary_search_max_iterations" mapstructure:"binary_search_max_iterations"`

	// Candidate centers
	CentroidStrategy CentroidStrategy `json:"centroid_strategy" mapstructure:"centroid_strategy"`
	MaxCandidates    int              `json:"max_candidates" mapstructure:"max_candidates"` // Cap on centers per pass, 0 = unlimited
	PathCount        int              `json:"path_count" mapstructure:"path_count"`         // Number of source paths, 0 = unknown

	DenseMaxCandidates int `json:"dense_max_candidates" mapstructure:"dense_max_candidates"` // Cap on dense grid centers

	// Validation
	SampleDensity     SampleDensity `json:"sample_density" mapstructure:"sample_density"`
	BoundaryTolerance float64       `json:"boundary_tolerance" mapstructure:"boundary_tolerance"` // Points this close to an edge count as inside
	UseSpatialGrid    bool          `json:"use_spatial_grid" mapstructure:"use_spatial_grid"`

	// Post-processing
	EdgeExpansion bool    `json:"edge_expansion" mapstructure:"edge_expansion"` // Push sides outward for polygons with <= 10 vertices
	MaxExpansion  float64 `json:"max_expansion" mapstructure:"max_expansion"`   // Largest outward push per side

	// Hybrid orchestration
	CoverageThreshold float64 `json:"coverage_threshold" mapstructure:"coverage_threshold"` // Fraction of TargetArea that skips dense search
	TargetArea        float64 `json:"target_area" mapstructure:"target_area"`               // Optional reference area, 0 = none
	ForceDenseSearch  bool    `json:"force_dense_search" mapstructure:"force_dense_search"`
	SkipDenseSearch   bool    `json:"skip_dense_search" mapstructure:"skip_dense_search"`

	DebugMode bool `json:"debug_mode" mapstructure:"debug_mode"`
}

// MaxTime returns the boundary search budget as a duration.
func (s FitSettings) MaxTime() time.Duration {
	return time.Duration(s.MaxTimeMs) * time.Millisecond
}

// DenseMaxTime returns the dense search budget as a duration.
func (s FitSettings) DenseMaxTime() time.Duration {
	return time.Duration(s.DenseMaxTimeMs) * time.Millisecond
}

// DefaultAspectRatios is the ratio set used for convex polygons.
var DefaultAspectRatios = []float64{0.5, 0.7, 1.0, 1.4, 2.0, 2.5, 3.0}

// DefaultConcaveAspectRatios widens the ratio set for concave polygons,
// whose best rectangles are often long and thin.
var DefaultConcaveAspectRatios = []float64{0.25, 0.33, 0.4, 0.5, 0.7, 1.0, 1.4, 2.0, 2.5, 3.0, 4.0}

func DefaultSettings() FitSettings {
	return FitSettings{
		MaxTimeMs:                 300,
		DenseMaxTimeMs:            500,
		AngleStep:                 8,
		RefinementStep:            2,
		RefinementRange:           8,
		AngleTolerance:            5,
		DominantAngleCount:        4,
		AspectRatios:              append([]float64(nil), DefaultAspectRatios...),
		ConcaveAspectRatios:       append([]float64(nil), DefaultConcaveAspectRatios...),
		BinarySearchPrecision:     1e-4,
		BinarySearchMaxIterations: 18,
		CentroidStrategy:          CentroidAuto,
		MaxCandidates:             80,
		DenseMaxCandidates:        400,
		SampleDensity:             DensityStandard,
		BoundaryTolerance:         1e-6,
		UseSpatialGrid:            true,
		EdgeExpansion:             true,
		MaxExpansion:              200,
		CoverageThreshold:         0.96,
	}
}

// FitResult is the outcome of a successful fit. Failures are reported as
// errors by the engine, never as a zero-area result.
type FitResult struct {
	Rectangle Rectangle     `json:"rectangle"`
	Method    Method        `json:"method"`
	Elapsed   time.Duration `json:"elapsed"`
	Truncated bool          `json:"truncated"` // A time budget cut the search short
}
