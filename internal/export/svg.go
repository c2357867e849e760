package export

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/piwi3910/RectFit/internal/model"
)

// SVG canvas layout in pixels.
const (
	svgCanvasSize = 800
	svgMargin     = 40
	svgFooter     = 30
)

// WriteSVG renders the polygon and its fitted rectangle to w. Polygon
// coordinates are scaled to fit an 800px canvas and rounded to integer
// canvas units.
func WriteSVG(w io.Writer, e Entry) error {
	if len(e.Outline) < 3 {
		return fmt.Errorf("outline has %d points, need at least 3", len(e.Outline))
	}

	min, max := e.Outline.BoundingBox()
	bw := max.X - min.X
	bh := max.Y - min.Y
	inner := float64(svgCanvasSize - 2*svgMargin)
	scale := inner / math.Max(bw, bh)
	width := int(math.Ceil(bw*scale)) + 2*svgMargin
	height := int(math.Ceil(bh*scale)) + 2*svgMargin + svgFooter
	vp := newViewport(e.Outline, svgMargin, svgMargin, bw*scale, bh*scale)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(e.Label)
	canvas.Rect(0, 0, width, height, "fill:white")

	xs, ys := toSVGPoints(vp, e.Outline)
	canvas.Polygon(xs, ys, "fill:#d2b48c;stroke:#646464;stroke-width:2")

	r := e.Result.Rectangle
	xs, ys = toSVGPoints(vp, r.Outline())
	canvas.Polygon(xs, ys, "fill:rgba(76,175,80,0.8);stroke:#1e1e1e;stroke-width:1")

	cx, cy := vp.apply(r.Center)
	canvas.Circle(int(math.Round(cx)), int(math.Round(cy)), 3, "fill:#c80000")

	caption := fmt.Sprintf("%s: %.1f x %.1f @ %.2f°, area %.1f (%.1f%%), %s",
		e.Label, r.Width, r.Height, r.AngleDeg, r.Area, e.Coverage(), e.Result.Method)
	canvas.Text(width/2, height-svgFooter/2, caption, "text-anchor:middle;font-size:12px;fill:#333")
	canvas.End()
	return nil
}

// ExportSVG writes the SVG overlay for one entry to path.
func ExportSVG(path string, e Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create SVG file: %w", err)
	}
	if err := WriteSVG(f, e); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toSVGPoints(vp viewport, o model.Outline) ([]int, []int) {
	xs := make([]int, len(o))
	ys := make([]int, len(o))
	for i, p := range o {
		x, y := vp.apply(p)
		xs[i] = int(math.Round(x))
		ys[i] = int(math.Round(y))
	}
	return xs, ys
}
