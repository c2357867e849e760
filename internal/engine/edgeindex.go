package engine

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/piwi3910/RectFit/internal/model"
)

// edgeEntry wraps one outline edge for R-tree storage.
type edgeEntry struct {
	a, b model.Point2D
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *edgeEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// EdgeIndex answers nearest-edge distance queries against an outline.
type EdgeIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewEdgeIndex indexes every non-degenerate edge of the outline.
func NewEdgeIndex(o model.Outline) *EdgeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	min, max := o.BoundingBox()
	pad := 1e-9 * math.Max(1, math.Max(max.X-min.X, max.Y-min.Y))

	count := 0
	n := len(o)
	for i := 0; i < n; i++ {
		a, b := o[i], o[(i+1)%n]
		if a == b {
			continue
		}
		x0, y0 := math.Min(a.X, b.X), math.Min(a.Y, b.Y)
		w := math.Max(math.Abs(b.X-a.X), pad)
		h := math.Max(math.Abs(b.Y-a.Y), pad)
		bbox, err := rtreego.NewRect(rtreego.Point{x0, y0}, []float64{w, h})
		if err != nil {
			continue
		}
		tree.Insert(&edgeEntry{a: a, b: b, bbox: bbox})
		count++
	}
	return &EdgeIndex{tree: tree, count: count}
}

// Len returns the number of indexed edges.
func (ix *EdgeIndex) Len() int { return ix.count }

// Distance returns the distance from p to the nearest edge, or +Inf for
// an empty index.
//
// The nearest bounding box gives an upper bound d. Any edge closer than
// d must have a bounding box inside the square of half-size d around p,
// so one intersect query finishes the search.
func (ix *EdgeIndex) Distance(p model.Point2D) float64 {
	if ix.count == 0 {
		return math.Inf(1)
	}
	nearest := ix.tree.NearestNeighbor(rtreego.Point{p.X, p.Y})
	if nearest == nil {
		return math.Inf(1)
	}
	e := nearest.(*edgeEntry)
	best := segmentDistance(p, e.a, e.b)
	if best == 0 {
		return 0
	}
	box, err := rtreego.NewRect(rtreego.Point{p.X - best, p.Y - best}, []float64{2 * best, 2 * best})
	if err != nil {
		return best
	}
	for _, s := range ix.tree.SearchIntersect(box) {
		e := s.(*edgeEntry)
		if d := segmentDistance(p, e.a, e.b); d < best {
			best = d
		}
	}
	return best
}
