package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/RectFit/internal/model"
)

func TestOutlineKey(t *testing.T) {
	a := lShape()
	b := lShape()
	assert.Equal(t, OutlineKey(a), OutlineKey(b), "same vertices share a key")

	b[2].X += 1e-9
	assert.NotEqual(t, OutlineKey(a), OutlineKey(b))

	assert.NotEqual(t, gridKey(a, 0), gridKey(a, 1e-6), "margin is part of the grid key")
}

func TestGridCache_GetOrBuild(t *testing.T) {
	c := NewGridCache()
	g1 := c.GetOrBuild(lShape(), 1e-6)
	g2 := c.GetOrBuild(lShape(), 1e-6)
	assert.Same(t, g1, g2)
	assert.Equal(t, 1, c.Len())

	g3 := c.GetOrBuild(lShape(), 0)
	assert.NotSame(t, g1, g3)
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get(gridKey(lShape(), 0))
	assert.True(t, ok)
	assert.Same(t, g3, got)
}

func TestGridCache_InvalidateAndClear(t *testing.T) {
	c := NewGridCache()
	c.GetOrBuild(lShape(), 0)
	c.GetOrBuild(lShape(), 1e-6)
	c.GetOrBuild(uShape(), 0)

	assert.Equal(t, 2, c.Invalidate(lShape()), "every margin for the outline")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Invalidate(squareOutline(3)))

	c.Put(42, NewSpatialGrid(squareOutline(3), 0))
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestGridCache_Concurrent(t *testing.T) {
	c := NewGridCache()
	shapes := []model.Outline{lShape(), uShape(), notchedSquare()}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(o model.Outline) {
			defer wg.Done()
			g := c.GetOrBuild(o, 1e-6)
			assert.True(t, g.ContainsPoint(model.Point2D{X: 10, Y: 10}))
		}(shapes[i%len(shapes)])
	}
	wg.Wait()
	assert.Equal(t, len(shapes), c.Len())
}
