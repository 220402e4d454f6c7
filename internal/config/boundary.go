package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-dtw/internal/geo"
)

// LoadBoundary reads the study-area outline from a GeoJSON file holding a
// FeatureCollection, a Feature or a bare geometry. Coordinates are expected
// in the lat/long projection.
func LoadBoundary(path string) (*geojson.FeatureCollection, geo.Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geo.Boundary{}, fmt.Errorf("read boundary: %w", err)
	}
	fc, err := ParseBoundary(data)
	if err != nil {
		return nil, geo.Boundary{}, fmt.Errorf("%s: %w", path, err)
	}

	b := geo.NewBoundary(collect(fc))
	if b.Empty() {
		return nil, geo.Boundary{}, fmt.Errorf("%s: boundary has no polygons", path)
	}
	return fc, b, nil
}

// ParseBoundary decodes GeoJSON into a FeatureCollection.
func ParseBoundary(data []byte) (*geojson.FeatureCollection, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode boundary: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		return geojson.UnmarshalFeatureCollection(data)
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		return fc.Append(f), nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		return fc.Append(geojson.NewFeature(g.Geometry())), nil
	}
}

// FootprintBoundary builds a boundary from a ring, used when no outline file
// is configured.
func FootprintBoundary(ring orb.Ring) (*geojson.FeatureCollection, geo.Boundary) {
	poly := orb.Polygon{ring}
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(poly)
	f.Properties["source"] = "model footprint"
	fc.Append(f)
	return fc, geo.NewBoundary(poly)
}

func collect(fc *geojson.FeatureCollection) orb.Geometry {
	var c orb.Collection
	for _, f := range fc.Features {
		if f.Geometry != nil {
			c = append(c, f.Geometry)
		}
	}
	return c
}
