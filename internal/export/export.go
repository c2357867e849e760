// Package export writes fit results to PDF reports, QR-coded labels,
// SVG overlays and XLSX workbooks.
package export

import (
	"math"

	"github.com/piwi3910/RectFit/internal/model"
)

// Entry is one fitted region ready for export.
type Entry struct {
	Key     string          // Store key or region ID
	Label   string          // Human readable name
	Outline model.Outline   // Polygon the rectangle was fitted into
	Result  model.FitResult // Fit outcome
}

// Coverage returns the rectangle area as a percentage of the polygon area.
func (e Entry) Coverage() float64 {
	a := e.Outline.Area()
	if a == 0 {
		return 0
	}
	return e.Result.Rectangle.Area / a * 100
}

// viewport maps polygon coordinates into a drawing box with y pointing
// down, preserving aspect ratio and centering the drawing.
type viewport struct {
	min     model.Point2D
	scale   float64
	offsetX float64
	offsetY float64
	height  float64
}

func newViewport(o model.Outline, x, y, w, h float64) viewport {
	min, max := o.BoundingBox()
	bw := max.X - min.X
	bh := max.Y - min.Y
	scale := 1.0
	if bw > 0 && bh > 0 {
		scale = math.Min(w/bw, h/bh)
	}
	return viewport{
		min:     min,
		scale:   scale,
		offsetX: x + (w-bw*scale)/2,
		offsetY: y + (h-bh*scale)/2,
		height:  bh * scale,
	}
}

// apply returns the drawing coordinates of p.
func (v viewport) apply(p model.Point2D) (float64, float64) {
	return v.offsetX + (p.X-v.min.X)*v.scale, v.offsetY + v.height - (p.Y-v.min.Y)*v.scale
}
