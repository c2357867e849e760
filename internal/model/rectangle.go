package model

import "math"

// angleSnap is how close (in degrees) an angle must be to a quadrant
// boundary to be snapped onto it when canonicalising.
const angleSnap = 1e-9

// Rectangle is an arbitrarily rotated rectangle. Width runs along the
// AngleDeg direction, Height along its perpendicular.
//
// Corners are ordered bottom-left, bottom-right, top-right, top-left in
// the rectangle's own rotated frame, so consecutive corners always share
// an edge.
type Rectangle struct {
	Center   Point2D    `json:"center"`
	AngleDeg float64    `json:"angle_deg"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Corners  [4]Point2D `json:"corners"`
	Area     float64    `json:"area"`
}

// NewRectangle builds a rectangle and computes its corners and area.
func NewRectangle(center Point2D, angleDeg, width, height float64) Rectangle {
	r := Rectangle{
		Center:   center,
		AngleDeg: angleDeg,
		Width:    width,
		Height:   height,
		Area:     width * height,
	}
	hw, hh := width/2, height/2
	local := [4]Point2D{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	for i, p := range local {
		r.Corners[i] = r.ToWorld(p)
	}
	return r
}

// Axes returns the unit vectors of the rectangle's width and height directions.
func (r Rectangle) Axes() (u, v Point2D) {
	sin, cos := math.Sincos(r.AngleDeg * math.Pi / 180)
	return Point2D{X: cos, Y: sin}, Point2D{X: -sin, Y: cos}
}

// ToWorld maps a point from the rectangle's local frame (origin at the
// center, x along the width) to world coordinates.
func (r Rectangle) ToWorld(p Point2D) Point2D {
	u, v := r.Axes()
	return Point2D{
		X: r.Center.X + p.X*u.X + p.Y*v.X,
		Y: r.Center.Y + p.X*u.Y + p.Y*v.Y,
	}
}

// ToLocal maps a world point into the rectangle's local frame.
func (r Rectangle) ToLocal(p Point2D) Point2D {
	u, v := r.Axes()
	d := p.Sub(r.Center)
	return Point2D{X: d.X*u.X + d.Y*u.Y, Y: d.X*v.X + d.Y*v.Y}
}

// Scaled returns the rectangle shrunk or grown about its center.
func (r Rectangle) Scaled(f float64) Rectangle {
	return NewRectangle(r.Center, r.AngleDeg, r.Width*f, r.Height*f)
}

// Outline returns the corners as a closed outline.
func (r Rectangle) Outline() Outline {
	return Outline{r.Corners[0], r.Corners[1], r.Corners[2], r.Corners[3]}
}

// Canonical returns the same rectangle with AngleDeg in [0, 90). A
// rectangle rotated by 90° or more is the same shape with width and
// height swapped, so only one quadrant is ever reported.
func (r Rectangle) Canonical() Rectangle {
	a := NormalizeAngle180(r.AngleDeg)
	w, h := r.Width, r.Height
	if a >= 90-angleSnap {
		a -= 90
		w, h = h, w
	}
	if math.Abs(a) < angleSnap {
		a = 0
	}
	return NewRectangle(r.Center, a, w, h)
}

// NormalizeAngle180 folds an angle in degrees into [0, 180).
func NormalizeAngle180(deg float64) float64 {
	a := math.Mod(deg, 180)
	if a < 0 {
		a += 180
	}
	if a >= 180-angleSnap {
		a = 0
	}
	return a
}

// AngularDistance returns the distance between two undirected angles in
// degrees, in [0, 90].
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 180)
	if d > 90 {
		d = 180 - d
	}
	return d
}
