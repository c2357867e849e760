package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/RectFit/internal/model"
)

// ImportGeoJSON reads a GeoJSON file holding a FeatureCollection, a single
// Feature or a bare geometry.
func ImportGeoJSON(path string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ImportGeoJSONFromReader(f)
}

// ImportGeoJSONFromReader converts every Polygon and MultiPolygon in the
// document to regions. Only the outer ring of each polygon is used; holes
// produce a warning. Regions are labelled by the feature's "name" or
// "label" property when present.
func ImportGeoJSONFromReader(r io.Reader) ImportResult {
	result := ImportResult{}
	data, err := io.ReadAll(r)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read GeoJSON: %v", err))
		return result
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid GeoJSON: %v", err))
		return result
	}

	var features []*geojson.Feature
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid FeatureCollection: %v", err))
			return result
		}
		features = fc.Features
	case "Feature":
		feat, err := geojson.UnmarshalFeature(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid Feature: %v", err))
			return result
		}
		features = []*geojson.Feature{feat}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid geometry: %v", err))
			return result
		}
		features = []*geojson.Feature{geojson.NewFeature(g.Geometry())}
	}

	for i, feat := range features {
		name := featureName(feat, i+1)
		var polys []orb.Polygon
		switch g := feat.Geometry.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{g}
		case orb.MultiPolygon:
			polys = g
		default:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: skipped %s geometry", name, geometryType(feat.Geometry)))
			continue
		}
		for j, poly := range polys {
			label := name
			if len(polys) > 1 {
				label = fmt.Sprintf("%s.%d", name, j+1)
			}
			if len(poly) == 0 {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: empty polygon", label))
				continue
			}
			if len(poly) > 1 {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: ignored %d hole(s)", label, len(poly)-1))
			}
			o := ringToOutline(poly[0])
			if len(o) < 3 {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: outer ring has fewer than 3 points", label))
				continue
			}
			result.Regions = append(result.Regions, model.NewRegion(label, o))
		}
	}

	if len(result.Regions) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No polygons found")
	}
	return result
}

// ringToOutline drops the closing point GeoJSON rings repeat.
func ringToOutline(ring orb.Ring) model.Outline {
	pts := ring
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	o := make(model.Outline, len(pts))
	for i, p := range pts {
		o[i] = model.Point2D{X: p.X(), Y: p.Y()}
	}
	return o
}

func featureName(f *geojson.Feature, n int) string {
	for _, key := range []string{"name", "label"} {
		if s, ok := f.Properties[key].(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("Feature %d", n)
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "empty"
	}
	return g.GeoJSONType()
}
