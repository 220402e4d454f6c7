// Package tiler renders classified depth cells as Mapbox vector tiles and
// packs them into a PMTiles archive for the viewer's depth overlay.
//
// Uses paulmach/orb for clipping, simplification and MVT encoding, and
// internal/pmtiles for the archive.
package tiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/pmtiles"
)

// MaxZoom is the deepest zoom level generated.
const MaxZoom = 16

// Options controls tile generation.
type Options struct {
	Layer   string // MVT layer name, default "depth"
	MinZoom int
	MaxZoom int
}

func (o Options) normalize() Options {
	if o.Layer == "" {
		o.Layer = "depth"
	}
	if o.MinZoom < 0 {
		o.MinZoom = 0
	}
	if o.MaxZoom <= 0 || o.MaxZoom > MaxZoom {
		o.MaxZoom = MaxZoom
	}
	if o.MinZoom > o.MaxZoom {
		o.MinZoom = o.MaxZoom
	}
	return o
}

// Generate encodes the polygons of fc as gzipped MVT tiles for every zoom
// level in range.
func Generate(ctx context.Context, fc *geojson.FeatureCollection, opts Options) ([]pmtiles.Tile, error) {
	opts = opts.normalize()

	var out []pmtiles.Tile
	for z := opts.MinZoom; z <= opts.MaxZoom; z++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		byTile := make(map[maptile.Tile][]*geojson.Feature)
		for _, f := range fc.Features {
			for _, t := range tilesInBounds(f.Geometry.Bound(), maptile.Zoom(z)) {
				byTile[t] = append(byTile[t], f)
			}
		}
		for t, features := range byTile {
			data, err := encodeTile(t, features, opts.Layer)
			if err != nil {
				return nil, fmt.Errorf("tile %d/%d/%d: %w", t.Z, t.X, t.Y, err)
			}
			if data != nil {
				out = append(out, pmtiles.Tile{Z: uint8(t.Z), X: t.X, Y: t.Y, Data: data})
			}
		}
		slog.Debug("zoom level tiled", "zoom", z, "tiles", len(byTile))
	}
	return out, nil
}

// Write tiles fc and writes the archive to w. extent supplies the archive
// bounds and center.
func Write(ctx context.Context, w io.Writer, fc *geojson.FeatureCollection, opts Options, extent geo.Extent) error {
	opts = opts.normalize()
	tiles, err := Generate(ctx, fc, opts)
	if err != nil {
		return err
	}
	return pmtiles.Write(w, pmtiles.Archive{
		Tiles: tiles,
		Metadata: map[string]any{
			"name":        opts.Layer,
			"format":      "pbf",
			"compression": "gzip",
			"minzoom":     opts.MinZoom,
			"maxzoom":     opts.MaxZoom,
			"vector_layers": []map[string]any{{
				"id": opts.Layer,
				"fields": map[string]string{
					"row": "Number", "col": "Number", "value": "Number",
					"class": "Number", "fill": "String",
				},
			}},
		},
		MinZoom:    uint8(opts.MinZoom),
		MaxZoom:    uint8(opts.MaxZoom),
		Bounds:     extent.Box.Bound(),
		Center:     extent.Center,
		CenterZoom: uint8(opts.MinZoom),
	})
}

// WriteFile is Write to a file, creating its directory.
func WriteFile(ctx context.Context, path string, fc *geojson.FeatureCollection, opts Options, extent geo.Extent) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(ctx, f, fc, opts, extent); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// encodeTile returns nil when nothing survives clipping.
func encodeTile(tile maptile.Tile, features []*geojson.Feature, layerName string) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	bound := tile.Bound()

	for _, f := range features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok || !intersects(poly, bound) {
			continue
		}
		// Clip and ProjectToTile mutate geometry in place.
		clone := geojson.NewFeature(poly.Clone())
		for k, v := range f.Properties {
			clone.Properties[k] = v
		}
		fc.Append(clone)
	}
	if len(fc.Features) == 0 {
		return nil, nil
	}

	layer := mvt.NewLayer(layerName, fc)
	if eps := simplifyEpsilon(tile.Z); eps > 0 {
		layer.Simplify(simplify.DouglasPeucker(eps))
	}
	layer.Clip(bound)
	layer.ProjectToTile(tile)
	layer.RemoveEmpty(0.5, 0.5)
	if len(layer.Features) == 0 {
		return nil, nil
	}
	return mvt.MarshalGzipped(mvt.Layers{layer})
}

// intersects reports whether poly overlaps the tile, beyond a bounding box
// test.
func intersects(poly orb.Polygon, tile orb.Bound) bool {
	if !poly.Bound().Intersects(tile) {
		return false
	}
	for _, ring := range poly {
		for _, p := range ring {
			if tile.Contains(p) {
				return true
			}
		}
	}
	corners := []orb.Point{
		tile.Min, {tile.Max[0], tile.Min[1]}, tile.Max, {tile.Min[0], tile.Max[1]}, tile.Center(),
	}
	for _, p := range corners {
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return false
}

// tilesInBounds returns all tiles at a zoom level that intersect a bounding box.
func tilesInBounds(bounds orb.Bound, zoom maptile.Zoom) []maptile.Tile {
	lo := maptile.At(bounds.Min, zoom)
	hi := maptile.At(bounds.Max, zoom)

	minX, maxX := lo.X, hi.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := lo.Y, hi.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	var tiles []maptile.Tile
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, maptile.New(x, y, zoom))
		}
	}
	return tiles
}

// simplifyEpsilon returns the simplification tolerance in degrees for a zoom
// level. Model cells are a few hundred meters across, so the tolerance stays
// well below a cell width.
func simplifyEpsilon(zoom maptile.Zoom) float64 {
	switch {
	case zoom >= 12:
		return 0
	case zoom >= 8:
		return 0.00001
	case zoom >= 4:
		return 0.0001
	default:
		return 0.0005
	}
}
