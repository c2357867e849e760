package model

// Edge is a derived view of two consecutive outline vertices.
// Angle is in degrees, normalized to [0, 180) since a rectangle side
// has no direction.
type Edge struct {
	Index  int     `json:"index"` // Index of the start vertex in the outline
	Start  Point2D `json:"start"`
	End    Point2D `json:"end"`
	Length float64 `json:"length"`
	Angle  float64 `json:"angle"`
}

// Midpoint returns the middle of the edge.
func (e Edge) Midpoint() Point2D {
	return Point2D{X: (e.Start.X + e.End.X) / 2, Y: (e.Start.Y + e.End.Y) / 2}
}

// AngleGroup clusters edges whose angles agree within a tolerance.
// TotalLength is the group's weight.
type AngleGroup struct {
	Angle       float64 `json:"angle"` // Angle of the longest member edge
	TotalLength float64 `json:"total_length"`
	EdgeCount   int     `json:"edge_count"`
}
