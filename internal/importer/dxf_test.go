package importer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RectFit/internal/model"
)

func TestChainSegments_ClosedSquare(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		// Reversed and slightly off, still within tolerance
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 10.005, Y: 0}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 0, Y: 10}},
		{start: model.Point2D{X: 0, Y: 10}, end: model.Point2D{X: 0, Y: 0}},
	}
	outlines, open := chainSegments(segs, chainTolerance)
	require.Len(t, outlines, 1)
	assert.Equal(t, 0, open)
	assert.Len(t, outlines[0], 4)
	assert.InDelta(t, 100.0, outlines[0].Area(), 0.1)
}

func TestChainSegments_OpenChain(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 0}, end: model.Point2D{X: 10, Y: 10}},
	}
	outlines, open := chainSegments(segs, chainTolerance)
	assert.Empty(t, outlines)
	assert.Equal(t, 1, open)
}

func TestChainSegments_LargestFirst(t *testing.T) {
	square := func(x, s float64) []segment {
		pts := []model.Point2D{{X: x, Y: 0}, {X: x + s, Y: 0}, {X: x + s, Y: s}, {X: x, Y: s}}
		var segs []segment
		for i := range pts {
			segs = append(segs, segment{start: pts[i], end: pts[(i+1)%4]})
		}
		return segs
	}
	segs := append(square(0, 1), square(5, 3)...)
	outlines, _ := chainSegments(segs, chainTolerance)
	require.Len(t, outlines, 2)
	assert.InDelta(t, 9.0, outlines[0].Area(), 1e-9)
	assert.InDelta(t, 1.0, outlines[1].Area(), 1e-9)
}

func TestBulgeArcPoints_Semicircle(t *testing.T) {
	p1 := model.Point2D{X: 0, Y: 0}
	p2 := model.Point2D{X: 10, Y: 0}
	pts := bulgeArcPoints(p1, p2, 1, 16)

	require.Len(t, pts, 17)
	assert.Equal(t, p1, pts[0])
	assert.Equal(t, p2, pts[len(pts)-1])
	c := model.Point2D{X: 5, Y: 0}
	for _, p := range pts {
		assert.InDelta(t, 5.0, p.Dist(c), 1e-9)
	}
	// Positive bulge turns counterclockwise, so the arc dips below the chord.
	assert.InDelta(t, -5.0, pts[8].Y, 1e-9)
}

func TestCircleToOutline(t *testing.T) {
	o := circleToOutline(2, 3, 4, circleSegments)
	assert.Len(t, o, circleSegments)
	n := float64(circleSegments)
	want := 0.5 * n * 16 * math.Sin(2*math.Pi/n)
	assert.InDelta(t, want, o.Area(), 1e-9)
	assert.InDelta(t, 2.0, o.VertexCentroid().X, 1e-9)
	assert.InDelta(t, 3.0, o.VertexCentroid().Y, 1e-9)
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/drawing.dxf")
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Regions)
}
