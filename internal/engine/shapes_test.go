package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/RectFit/internal/model"
)

func squareOutline(size float64) model.Outline {
	return model.Outline{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
}

// lShape is a 100x100 square with the top-right 60x60 quadrant removed.
func lShape() model.Outline {
	return model.Outline{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 40},
		{X: 40, Y: 40}, {X: 40, Y: 100}, {X: 0, Y: 100},
	}
}

// notchedSquare is a 100x100 square with a thin V notch cut down from
// the top edge to (50.5, 40).
func notchedSquare() model.Outline {
	return model.Outline{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 51, Y: 100},
		{X: 50.5, Y: 40}, {X: 50, Y: 100}, {X: 0, Y: 100},
	}
}

// uShape is an 80x60 block with a 40x40 pocket opening upward.
func uShape() model.Outline {
	return model.Outline{
		{X: 0, Y: 0}, {X: 80, Y: 0}, {X: 80, Y: 60}, {X: 60, Y: 60},
		{X: 60, Y: 20}, {X: 20, Y: 20}, {X: 20, Y: 60}, {X: 0, Y: 60},
	}
}

// assertContained checks r against o independently of the validator:
// every corner and dense perimeter sample is inside within tolerance,
// and no polygon vertex lies strictly inside r.
func assertContained(t *testing.T, o model.Outline, r model.Rectangle) {
	t.Helper()
	const eps = 1e-5
	for i := 0; i < 4; i++ {
		a, b := r.Corners[i], r.Corners[(i+1)%4]
		for k := 0; k <= 200; k++ {
			f := float64(k) / 200
			p := model.Point2D{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f}
			if !ContainsWithTolerance(p, o, eps) {
				assert.Failf(t, "sample outside polygon", "side %d at %.3f: %+v", i, f, p)
				return
			}
		}
	}
	for _, v := range o {
		l := r.ToLocal(v)
		if l.X > -r.Width/2+eps && l.X < r.Width/2-eps && l.Y > -r.Height/2+eps && l.Y < r.Height/2-eps {
			assert.Failf(t, "polygon vertex inside rectangle", "%+v", v)
			return
		}
	}
}
