package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/RectFit/internal/model"
)

// DXF curve approximation and chaining parameters.
const (
	circleSegments  = 64
	arcSegments     = 32
	chainTolerance  = 0.01
	minRegionExtent = 0.01
)

// segment is a loose LINE or flattened ARC piece waiting to be chained.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF imports every closed shape in a DXF drawing as a region:
// LWPOLYLINEs, CIRCLEs, and chains of connected LINEs and ARCs.
// Coordinates are kept in drawing units so results line up with the
// source drawing.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}
	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []model.Outline
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if o := lwPolylineToOutline(e); len(o) >= 3 {
				outlines = append(outlines, o)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			outlines = append(outlines, circleToOutline(e.Center[0], e.Center[1], e.Radius, circleSegments))
		case *entity.Arc:
			segments = append(segments, pointsToSegments(arcToPoints(e, arcSegments))...)
		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	chained, open := chainSegments(segments, chainTolerance)
	outlines = append(outlines, chained...)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d open chain(s) of lines and arcs", open))
	}
	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for _, o := range outlines {
		min, max := o.BoundingBox()
		w, h := max.X-min.X, max.Y-min.Y
		if w < minRegionExtent || h < minRegionExtent {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", w, h))
			continue
		}
		result.Regions = append(result.Regions, model.NewRegion(fmt.Sprintf("DXF Region %d", len(result.Regions)+1), o))
	}
	return result
}

// lwPolylineToOutline converts a LWPOLYLINE to an outline. Vertices with
// a bulge are replaced by the arc they describe.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var o model.Outline
	n := len(lw.Vertices)
	for i := 0; i < n; i++ {
		cur := model.Point2D{X: lw.Vertices[i][0], Y: lw.Vertices[i][1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			o = append(o, cur)
			continue
		}
		next := model.Point2D{X: lw.Vertices[(i+1)%n][0], Y: lw.Vertices[(i+1)%n][1]}
		arc := bulgeArcPoints(cur, next, bulge, arcSegments)
		o = append(o, arc[:len(arc)-1]...)
	}
	return o
}

// bulgeArcPoints flattens the arc between p1 and p2 with the given DXF
// bulge (tangent of a quarter of the included angle, positive for
// counterclockwise). The result runs from p1 to p2 inclusive.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, segments int) []model.Point2D {
	chord := p1.Dist(p2)
	if chord < 1e-9 {
		return []model.Point2D{p1, p2}
	}
	sweep := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Abs(math.Sin(sweep/2)))

	// Center lies on the chord bisector, on the left for a CCW arc.
	mid := model.Point2D{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
	left := model.Point2D{X: -(p2.Y - p1.Y) / chord, Y: (p2.X - p1.X) / chord}
	offset := radius * math.Cos(sweep/2)
	if bulge < 0 {
		offset = -offset
	}
	c := mid.Add(left.Scale(offset))

	start := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	pts := make([]model.Point2D, 0, segments+1)
	pts = append(pts, p1)
	for i := 1; i < segments; i++ {
		a := start + sweep*float64(i)/float64(segments)
		pts = append(pts, model.Point2D{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)})
	}
	return append(pts, p2)
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(cx, cy, r float64, segments int) model.Outline {
	o := make(model.Outline, segments)
	for i := range o {
		a := 2 * math.Pi * float64(i) / float64(segments)
		o[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return o
}

// arcToPoints flattens a DXF ARC, which always runs counterclockwise
// from its start angle to its end angle.
func arcToPoints(a *entity.Arc, segments int) []model.Point2D {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]model.Point2D, segments+1)
	for i := range pts {
		t := start + (end-start)*float64(i)/float64(segments)
		pts[i] = model.Point2D{X: cx + r*math.Cos(t), Y: cy + r*math.Sin(t)}
	}
	return pts
}

func pointsToSegments(pts []model.Point2D) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{start: pts[i-1], end: pts[i]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance into
// closed outlines, largest area first. It also returns how many chains
// could not be closed.
func chainSegments(segs []segment, tolerance float64) ([]model.Outline, int) {
	used := make([]bool, len(segs))
	var outlines []model.Outline
	open := 0

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := []model.Point2D{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case tail.Dist(s.start) <= tolerance:
					chain = append(chain, s.end)
				case tail.Dist(s.end) <= tolerance:
					chain = append(chain, s.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && chain[0].Dist(chain[len(chain)-1]) <= tolerance {
			outlines = append(outlines, model.Outline(chain[:len(chain)-1]))
		} else {
			open++
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].Area() > outlines[j].Area()
	})
	return outlines, open
}
