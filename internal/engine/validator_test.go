package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RectFit/internal/model"
)

func TestValidator_AcceptsAndRejects(t *testing.T) {
	v := NewValidator(lShape(), model.DefaultSettings())

	inside := model.NewRectangle(model.Point2D{X: 50, Y: 20}, 0, 100, 40)
	assert.True(t, v.Validate(inside), "flush with three edges")
	assert.True(t, v.ValidateAt(inside, model.DensityExhaustive))

	across := model.NewRectangle(model.Point2D{X: 50, Y: 50}, 0, 40, 40)
	assert.False(t, v.Validate(across), "covers the missing quadrant")

	assert.False(t, v.Validate(model.NewRectangle(model.Point2D{X: 20, Y: 20}, 0, 0, 10)), "zero width")
}

func TestValidator_ExhaustiveCatchesThinNotch(t *testing.T) {
	// Every sample of this rectangle misses the notch, so only the exact
	// edge test sees the breach.
	v := NewValidator(notchedSquare(), model.DefaultSettings())
	r := model.NewRectangle(model.Point2D{X: 50, Y: 50}, 0, 80, 80)

	assert.True(t, v.ValidateAt(r, model.DensitySparse))
	assert.True(t, v.ValidateAt(r, model.DensityDense))
	assert.False(t, v.ValidateAt(r, model.DensityExhaustive))
}

func TestValidator_DensityMonotonic(t *testing.T) {
	for name, o := range map[string]model.Outline{
		"l-shape": lShape(),
		"notch":   notchedSquare(),
		"u-shape": uShape(),
	} {
		t.Run(name, func(t *testing.T) {
			v := NewValidator(o, model.DefaultSettings())
			checked := 0
			for cx := 5.0; cx < 100; cx += 15 {
				for cy := 5.0; cy < 100; cy += 15 {
					for angle := 0.0; angle < 180; angle += 22.5 {
						for _, size := range []float64{5, 15, 30, 60} {
							r := model.NewRectangle(model.Point2D{X: cx, Y: cy}, angle, size, size/2)
							sparse := v.ValidateAt(r, model.DensitySparse)
							standard := v.ValidateAt(r, model.DensityStandard)
							dense := v.ValidateAt(r, model.DensityDense)
							exhaustive := v.ValidateAt(r, model.DensityExhaustive)
							if exhaustive {
								assert.True(t, dense, "exhaustive-valid must be dense-valid: %+v", r)
							}
							if dense {
								assert.True(t, standard, "dense-valid must be standard-valid: %+v", r)
							}
							if standard {
								assert.True(t, sparse, "standard-valid must be sparse-valid: %+v", r)
							}
							if exhaustive {
								assertContained(t, o, r)
								checked++
							}
						}
					}
				}
			}
			assert.Positive(t, checked)
		})
	}
}

func TestValidator_GridDoesNotChangeAnswers(t *testing.T) {
	withGrid := model.DefaultSettings()
	noGrid := withGrid
	noGrid.UseSpatialGrid = false

	a := NewValidator(uShape(), withGrid)
	b := NewValidator(uShape(), noGrid)
	for cx := 2.0; cx < 80; cx += 7 {
		for cy := 2.0; cy < 60; cy += 7 {
			r := model.NewRectangle(model.Point2D{X: cx, Y: cy}, 15, 12, 6)
			assert.Equal(t, b.ValidateAt(r, model.DensityExhaustive), a.ValidateAt(r, model.DensityExhaustive), "%+v", r.Center)
		}
	}
}

func TestValidator_ShrinkToFit(t *testing.T) {
	v := NewValidator(squareOutline(10), model.DefaultSettings())
	big := model.NewRectangle(model.Point2D{X: 5, Y: 5}, 0, 12, 12)
	require.False(t, v.ValidateAt(big, model.DensityExhaustive))

	r, ok := v.ShrinkToFit(big)
	require.True(t, ok)
	// 0.9 gives 10.8, still too big. 0.8 gives 9.6.
	assert.InDelta(t, 9.6, r.Width, 1e-9)
	assert.Equal(t, big.Center, r.Center)

	_, ok = v.ShrinkToFit(model.NewRectangle(model.Point2D{X: 5, Y: 5}, 0, 30, 30))
	assert.False(t, ok, "half size still does not fit")
}

func TestValidator_ExpandEdges(t *testing.T) {
	v := NewValidator(squareOutline(10), model.DefaultSettings())
	start := model.NewRectangle(model.Point2D{X: 4, Y: 4}, 0, 4, 4)

	r, ok := v.ExpandEdges(start, 20)
	require.True(t, ok)
	assert.InDelta(t, 100.0, r.Area, 0.1)
	assert.InDelta(t, 5.0, r.Center.X, 0.01)
	assert.InDelta(t, 5.0, r.Center.Y, 0.01)
	assertContained(t, squareOutline(10), r)
}

func TestValidator_ExpandEdgesConcave(t *testing.T) {
	o := lShape()
	v := NewValidator(o, model.DefaultSettings())
	start := model.NewRectangle(model.Point2D{X: 50, Y: 20}, 0, 20, 10)

	r, ok := v.ExpandEdges(start, 200)
	require.True(t, ok)
	assert.Greater(t, r.Area, start.Area)
	assert.LessOrEqual(t, r.Area, 4000.0+1e-3)
	assertContained(t, o, r)
}

func TestValidator_ExpandEdgesNoRoom(t *testing.T) {
	v := NewValidator(squareOutline(10), model.DefaultSettings())
	full := model.NewRectangle(model.Point2D{X: 5, Y: 5}, 0, 10, 10)
	r, ok := v.ExpandEdges(full, 20)
	assert.False(t, ok)
	assert.Equal(t, full, r)
}
