package tiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/pmtiles"
)

func cells() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, lon := range []float64{10, 10.5} {
		ring := orb.Ring{{lon, 10}, {lon + 0.5, 10}, {lon + 0.5, 10.5}, {lon, 10.5}, {lon, 10}}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["row"] = 0
		f.Properties["col"] = i
		f.Properties["value"] = float64(10 * (i + 1))
		f.Properties["class"] = i
		f.Properties["fill"] = "#0000e0"
		fc.Append(f)
	}
	return fc
}

func TestGenerate(t *testing.T) {
	tiles, err := Generate(context.Background(), cells(), Options{MinZoom: 0, MaxZoom: 3})
	require.NoError(t, err)
	require.Len(t, tiles, 4, "one tile per zoom level")

	for _, tile := range tiles {
		layers, err := mvt.UnmarshalGzipped(tile.Data)
		require.NoError(t, err)
		require.Len(t, layers, 1)
		assert.Equal(t, "depth", layers[0].Name)
		assert.Len(t, layers[0].Features, 2, "zoom %d", tile.Z)
	}
}

func TestGenerateClipsToTiles(t *testing.T) {
	// At zoom 10 the cells span several tiles.
	tiles, err := Generate(context.Background(), cells(), Options{MinZoom: 10, MaxZoom: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(tiles), 2)
	for _, tile := range tiles {
		assert.Equal(t, uint8(10), tile.Z)
	}
}

func TestOptionsNormalize(t *testing.T) {
	o := Options{MinZoom: -3, MaxZoom: 99}.normalize()
	assert.Equal(t, "depth", o.Layer)
	assert.Equal(t, 0, o.MinZoom)
	assert.Equal(t, MaxZoom, o.MaxZoom)

	o = Options{Layer: "dtw", MinZoom: 9, MaxZoom: 4}.normalize()
	assert.Equal(t, "dtw", o.Layer)
	assert.Equal(t, 4, o.MinZoom)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles", "depth.pmtiles")
	extent := geo.Extent{
		Box:    geo.Bounds{MinX: 10, MinY: 10, MaxX: 11, MaxY: 10.5},
		Center: orb.Point{10.5, 10.25},
	}
	require.NoError(t, WriteFile(context.Background(), path, cells(), Options{MaxZoom: 2}, extent))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	h, err := pmtiles.ReadHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), h.TileEntries)
	assert.Equal(t, uint8(2), h.MaxZoom)
	assert.Equal(t, int32(105000000), h.CenterLonE7)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Write(context.Background(), &buf, geojson.NewFeatureCollection(), Options{MaxZoom: 1}, geo.Extent{})
	assert.ErrorIs(t, err, pmtiles.ErrNoTiles)
}

func TestTilesInBounds(t *testing.T) {
	b := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}
	assert.Len(t, tilesInBounds(b, 1), 4)
	assert.Len(t, tilesInBounds(b, maptile.Zoom(0)), 1)
}
