package model

import (
	"math"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate. Units are whatever the source
// drawing uses (mm for DXF slabs, px for SVG-derived outlines).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D { return Point2D{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point2D) Scale(s float64) Point2D { return Point2D{X: p.X * s, Y: p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point2D) Dist(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// BoundingBoxArea returns the area of the axis-aligned bounding box.
func (o Outline) BoundingBoxArea() float64 {
	min, max := o.BoundingBox()
	return (max.X - min.X) * (max.Y - min.Y)
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Rotate rotates every point by angle radians around pivot.
func (o Outline) Rotate(angle float64, pivot Point2D) Outline {
	sin, cos := math.Sincos(angle)
	result := make(Outline, len(o))
	for i, p := range o {
		dx := p.X - pivot.X
		dy := p.Y - pivot.Y
		result[i] = Point2D{
			X: pivot.X + dx*cos - dy*sin,
			Y: pivot.Y + dx*sin + dy*cos,
		}
	}
	return result
}

// SignedArea returns the shoelace area: positive for counterclockwise
// winding, negative for clockwise.
func (o Outline) SignedArea() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X * o[j].Y
		area -= o[j].X * o[i].Y
	}
	return area / 2
}

// Area returns the unsigned polygon area.
func (o Outline) Area() float64 {
	return math.Abs(o.SignedArea())
}

// VertexCentroid returns the plain average of the vertices.
func (o Outline) VertexCentroid() Point2D {
	if len(o) == 0 {
		return Point2D{}
	}
	var c Point2D
	for _, p := range o {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(o))
	return Point2D{X: c.X / n, Y: c.Y / n}
}

// Region is a named input polygon, e.g. one offcut or one selectable
// area of a drawing.
type Region struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Outline Outline `json:"outline"`
}

func NewRegion(label string, outline Outline) Region {
	return Region{
		ID:      uuid.New().String()[:8],
		Label:   label,
		Outline: outline,
	}
}
