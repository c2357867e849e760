package engine

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// CellState is the precomputed classification of one SpatialGrid cell.
type CellState uint8

const (
	CellOutside  CellState = iota // Entirely outside the polygon
	CellInside                    // Entirely inside the polygon
	CellBoundary                  // Touched by an edge, needs an exact test
)

// Grid cell size limits, in polygon units.
const (
	minCellSize = 2.0
	maxCellSize = 8.0
)

// maxGridCells caps the cell count. Outlines too large for the cell size
// limits get proportionally larger cells instead.
const maxGridCells = 1 << 16

// SpatialGrid accelerates point-in-polygon queries against one outline.
// Cells are classified once at construction. Only CellBoundary cells fall
// back to ray casting. The grid is read-only after construction and safe
// for concurrent queries.
type SpatialGrid struct {
	outline    model.Outline
	minX, minY float64
	maxX, maxY float64
	cellSize   float64
	cols, rows int
	cells      []CellState
	margin     float64
}

// NewSpatialGrid builds a grid over the outline's bounding box. Cell size
// is 2.5% of the average bounding box dimension, clamped to [2, 8], and
// grown past 8 only when the grid would exceed maxGridCells.
//
// A cell is marked CellBoundary when any edge passes within margin of it.
// Other cells therefore lie wholly on one side of the boundary, and their
// center decides the state. With margin >= the containment tolerance, a
// point in an Outside cell is never within tolerance of an edge.
func NewSpatialGrid(o model.Outline, margin float64) *SpatialGrid {
	min, max := o.BoundingBox()
	w := max.X - min.X
	h := max.Y - min.Y
	cell := gridCellSize(w, h)

	g := &SpatialGrid{
		outline:  o,
		minX:     min.X,
		minY:     min.Y,
		maxX:     max.X,
		maxY:     max.Y,
		cellSize: cell,
		cols:     int(math.Max(1, math.Ceil(w/cell))),
		rows:     int(math.Max(1, math.Ceil(h/cell))),
		margin:   margin,
	}
	g.cells = make([]CellState, g.cols*g.rows)
	marked := make([]bool, len(g.cells))

	n := len(o)
	for i := 0; i < n; i++ {
		a, b := o[i], o[(i+1)%n]
		c0, r0 := g.cellOf(math.Min(a.X, b.X)-margin, math.Min(a.Y, b.Y)-margin)
		c1, r1 := g.cellOf(math.Max(a.X, b.X)+margin, math.Max(a.Y, b.Y)+margin)
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				idx := r*g.cols + c
				if marked[idx] {
					continue
				}
				x0, y0, x1, y1 := g.cellBounds(c, r)
				if segmentTouchesBox(a, b, x0-margin, y0-margin, x1+margin, y1+margin) {
					marked[idx] = true
				}
			}
		}
	}

	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			idx := r*g.cols + c
			if marked[idx] {
				g.cells[idx] = CellBoundary
				continue
			}
			x0, y0, x1, y1 := g.cellBounds(c, r)
			center := model.Point2D{X: (x0 + x1) / 2, Y: (y0 + y1) / 2}
			if PointInPolygon(center, o) {
				g.cells[idx] = CellInside
			} else {
				g.cells[idx] = CellOutside
			}
		}
	}
	return g
}

// gridCellSize picks the cell edge length for a w x h bounding box.
func gridCellSize(w, h float64) float64 {
	cell := math.Min(math.Max(0.025*(w+h)/2, minCellSize), maxCellSize)
	for {
		n := math.Max(1, math.Ceil(w/cell)) * math.Max(1, math.Ceil(h/cell))
		if n <= maxGridCells || math.IsInf(cell, 0) || math.IsNaN(n) {
			return cell
		}
		// Thin boxes shrink linearly in cells, so the factor must not
		// fall below a fixed step.
		cell *= math.Max(1.05, math.Sqrt(n/maxGridCells))
	}
}

// CellSize returns the edge length of a grid cell.
func (g *SpatialGrid) CellSize() float64 { return g.cellSize }

// Dims returns the number of columns and rows.
func (g *SpatialGrid) Dims() (cols, rows int) { return g.cols, g.rows }

// Margin returns the edge margin the grid was built with.
func (g *SpatialGrid) Margin() float64 { return g.margin }

// State returns the classification of the cell containing p. Points
// outside the bounding box are CellOutside.
func (g *SpatialGrid) State(p model.Point2D) CellState {
	if p.X < g.minX || p.X > g.maxX || p.Y < g.minY || p.Y > g.maxY {
		if g.margin > 0 && p.X >= g.minX-g.margin && p.X <= g.maxX+g.margin &&
			p.Y >= g.minY-g.margin && p.Y <= g.maxY+g.margin {
			return CellBoundary
		}
		return CellOutside
	}
	c, r := g.cellOf(p.X, p.Y)
	return g.cells[r*g.cols+c]
}

// ContainsPoint reports whether p is strictly inside the polygon by
// ray casting, short-circuiting on the cached cell state.
func (g *SpatialGrid) ContainsPoint(p model.Point2D) bool {
	switch g.State(p) {
	case CellInside:
		return true
	case CellOutside:
		return false
	}
	return PointInPolygon(p, g.outline)
}

// ContainsRectangle reports whether the axis-aligned box lies inside the
// polygon. When every covered cell is Inside the answer comes straight
// from the grid. Otherwise no edge may enter the box and its center must
// be inside.
func (g *SpatialGrid) ContainsRectangle(minX, minY, maxX, maxY float64) bool {
	if minX < g.minX || minY < g.minY || maxX > g.maxX || maxY > g.maxY || minX > maxX || minY > maxY {
		return false
	}
	c0, r0 := g.cellOf(minX, minY)
	c1, r1 := g.cellOf(maxX, maxY)
	boundary := false
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			switch g.cells[r*g.cols+c] {
			case CellOutside:
				return false
			case CellBoundary:
				boundary = true
			}
		}
	}
	if !boundary {
		return true
	}
	o := g.outline
	n := len(o)
	for i := 0; i < n; i++ {
		if segmentEntersOpenBox(o[i], o[(i+1)%n], minX, minY, maxX, maxY) {
			return false
		}
	}
	return PointInPolygon(model.Point2D{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}, o)
}

// segmentEntersOpenBox reports whether ab passes through the interior of
// the box. Touching the box boundary does not count.
func segmentEntersOpenBox(a, b model.Point2D, minX, minY, maxX, maxY float64) bool {
	t0, t1, ok := clipSegment(a, b, minX, minY, maxX, maxY)
	if !ok {
		return false
	}
	m := model.Point2D{
		X: a.X + (b.X-a.X)*(t0+t1)/2,
		Y: a.Y + (b.Y-a.Y)*(t0+t1)/2,
	}
	return m.X > minX && m.X < maxX && m.Y > minY && m.Y < maxY
}

func (g *SpatialGrid) cellOf(x, y float64) (col, row int) {
	col = int(math.Floor((x - g.minX) / g.cellSize))
	row = int(math.Floor((y - g.minY) / g.cellSize))
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

func (g *SpatialGrid) cellBounds(col, row int) (x0, y0, x1, y1 float64) {
	x0 = g.minX + float64(col)*g.cellSize
	y0 = g.minY + float64(row)*g.cellSize
	return x0, y0, x0 + g.cellSize, y0 + g.cellSize
}
