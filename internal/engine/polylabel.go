package engine

import (
	"container/heap"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/piwi3910/RectFit/internal/model"
)

// maxPoleIterations bounds the number of cells the pole search expands.
const maxPoleIterations = 10000

type poleCell struct {
	center model.Point2D
	half   float64 // Half the cell size
	dist   float64 // Signed distance from center to the boundary
	bound  float64 // Best distance any point in the cell could reach
	seq    int
}

type cellQueue []*poleCell

func (q cellQueue) Len() int { return len(q) }
func (q cellQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound > q[j].bound
	}
	return q[i].seq < q[j].seq
}
func (q cellQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *cellQueue) Push(x any)   { *q = append(*q, x.(*poleCell)) }
func (q *cellQueue) Pop() any {
	old := *q
	c := old[len(old)-1]
	*q = old[:len(old)-1]
	return c
}

// PoleOfInaccessibility returns the interior point farthest from the
// boundary, to within precision, and its distance. A precision <= 0
// uses 1% of the larger bounding box dimension.
func PoleOfInaccessibility(o model.Outline, precision float64) (model.Point2D, float64) {
	if len(o) < 3 {
		return model.Point2D{}, 0
	}
	return newPolygon(o, 0, false, nil).pole(precision)
}

func (p *polygon) signedDistance(pt model.Point2D) float64 {
	d := p.edges.Distance(pt)
	if PointInPolygon(pt, p.outline) {
		return d
	}
	return -d
}

func (p *polygon) pole(precision float64) (model.Point2D, float64) {
	size := math.Min(p.width, p.height)
	if size <= 0 {
		return p.min, 0
	}
	if precision <= 0 {
		precision = math.Max(p.width, p.height) / 100
	}

	seq := 0
	newCell := func(c model.Point2D, half float64) *poleCell {
		d := p.signedDistance(c)
		seq++
		return &poleCell{center: c, half: half, dist: d, bound: d + half*math.Sqrt2, seq: seq}
	}

	q := &cellQueue{}
	half := size / 2
	for x := p.min.X; x < p.max.X; x += size {
		for y := p.min.Y; y < p.max.Y; y += size {
			heap.Push(q, newCell(model.Point2D{X: x + half, Y: y + half}, half))
		}
	}

	best := newCell(areaCentroid(p.outline), 0)
	if c := newCell(p.center(), 0); c.dist > best.dist {
		best = c
	}

	for i := 0; q.Len() > 0 && i < maxPoleIterations; i++ {
		c := heap.Pop(q).(*poleCell)
		if c.dist > best.dist {
			best = c
		}
		if c.bound-best.dist <= precision {
			continue
		}
		h := c.half / 2
		heap.Push(q, newCell(model.Point2D{X: c.center.X - h, Y: c.center.Y - h}, h))
		heap.Push(q, newCell(model.Point2D{X: c.center.X + h, Y: c.center.Y - h}, h))
		heap.Push(q, newCell(model.Point2D{X: c.center.X - h, Y: c.center.Y + h}, h))
		heap.Push(q, newCell(model.Point2D{X: c.center.X + h, Y: c.center.Y + h}, h))
	}
	return best.center, best.dist
}

// areaCentroid returns the area-weighted centroid, or the vertex average
// for outlines with no area.
func areaCentroid(o model.Outline) model.Point2D {
	ring := make(orb.Ring, 0, len(o)+1)
	for _, p := range o {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(o) > 0 {
		ring = append(ring, ring[0])
	}
	c, area := planar.CentroidArea(orb.Polygon{ring})
	if area == 0 || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return o.VertexCentroid()
	}
	return model.Point2D{X: c[0], Y: c[1]}
}
