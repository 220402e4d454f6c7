package service

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DepthCells returns one polygon per depth cell with a value, in the lat/long
// projection. Each feature carries row, col, value, class and fill.
func (s *LocationService) DepthCells(ctx context.Context) (*geojson.FeatureCollection, error) {
	layer, err := s.study.DepthLayer(ctx)
	if err != nil {
		return nil, err
	}
	table := s.study.Ramp(0)
	area := s.study.Area()

	fc := geojson.NewFeatureCollection()
	for row := 0; row < s.header.Rows; row++ {
		for col := 0; col < s.header.Cols; col++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, ok, err := s.store.Value(ctx, layer.Name, row, col)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			class, ok := classOf(v, layer, table)
			if !ok {
				continue
			}

			corners := s.header.Cell(row, col)
			ring := make(orb.Ring, 0, 5)
			for i, q := range append(corners[:], corners[0]) {
				p, err := s.reproject(q, area.RasterProjection, area.LatLongProjection)
				if err != nil {
					return nil, fmt.Errorf("cell %d,%d corner %d: %w", row, col, i, err)
				}
				ring = append(ring, p)
			}
			// Exterior rings are counter-clockwise.
			if ring.Orientation() == orb.CW {
				ring.Reverse()
			}

			f := geojson.NewFeature(orb.Polygon{ring})
			f.Properties["row"] = row
			f.Properties["col"] = col
			f.Properties["value"] = v
			f.Properties["class"] = class
			f.Properties["fill"] = table.Color(class).Hex()
			fc.Append(f)
		}
	}
	return fc, nil
}
