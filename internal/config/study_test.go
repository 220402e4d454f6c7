package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/raster"
)

func TestLoad(t *testing.T) {
	sa, err := Load(filepath.Join("testdata", "study.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Portland Basin", sa.Title)
	assert.Equal(t, "EPSG:4326", sa.LatLongProjection)
	assert.Equal(t, 10, sa.ZoomLevel)
	assert.Equal(t, orb.Point{480000, 5080000}, sa.Corners().Northwest)
	assert.Equal(t, orb.Point{560000, 5010000}, sa.Corners().Southeast)

	// defaults
	assert.Equal(t, geo.DefaultClassCount, sa.Classes)
	assert.Equal(t, 13, sa.MarkerZoom)
	low, high := sa.Colors()
	assert.Equal(t, geo.DefaultLowColor, low)
	assert.Equal(t, geo.DefaultHighColor, high)
	assert.False(t, sa.StrictBounds)

	dtw, ok := sa.Raster(raster.RoleDepthToWater)
	require.True(t, ok)
	assert.Equal(t, "dtw", dtw.Name)
	assert.Equal(t, filepath.Join("testdata", "rasters", "dtw.asc"), sa.Path(dtw.File))

	_, ok = sa.Raster(raster.RoleWaterElevation)
	assert.False(t, ok)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DTW_ZOOM_LEVEL", "12")
	t.Setenv("DTW_TITLE", "Override")

	sa, err := Load(filepath.Join("testdata", "study.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 12, sa.ZoomLevel)
	assert.Equal(t, "Override", sa.Title)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"raster_projection": "not a projection",
		"northwest_x": 10, "northwest_y": 0,
		"northeast_x": 0, "northeast_y": 0,
		"southwest_x": 10, "southwest_y": 5,
		"classes": 0,
		"low_color": "blue",
		"rasters": [
			{"name": "a", "file": "a.asc", "role": "depth"},
			{"name": "a", "file": "", "role": "uncertainty"}
		]
	}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"raster_projection",
		"northeast_x must be east of northwest_x",
		"northwest_y must be north of southwest_y",
		"classes must be positive",
		"low_color",
		`unknown role "depth"`,
		`duplicate name "a"`,
		"rasters[1].file is required",
		"role depth_to_water is required",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestPath(t *testing.T) {
	sa := &StudyArea{dir: "/srv/dtw"}
	assert.Equal(t, "/srv/dtw/x.asc", sa.Path("x.asc"))
	assert.Equal(t, "/abs/x.asc", sa.Path("/abs/x.asc"))
	assert.Equal(t, "", sa.Path(""))
}

func TestLoadBoundary(t *testing.T) {
	fc, b, err := LoadBoundary(filepath.Join("testdata", "boundary.geojson"))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	assert.True(t, b.Contains(orb.Point{-122.7, 45.5}))
	assert.False(t, b.Contains(orb.Point{-121.0, 45.5}))
}

func TestParseBoundaryForms(t *testing.T) {
	feature := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}`
	geometry := `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,1],[0,0]]]]}`

	for _, src := range []string{feature, geometry} {
		fc, err := ParseBoundary([]byte(src))
		require.NoError(t, err)
		require.Len(t, fc.Features, 1)
		assert.True(t, geo.NewBoundary(fc.Features[0].Geometry).Contains(orb.Point{0.5, 0.5}))
	}

	_, err := ParseBoundary([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadBoundaryWithoutPolygons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`), 0o644))

	_, _, err := LoadBoundary(path)
	assert.ErrorContains(t, err, "no polygons")
}

func TestFootprintBoundary(t *testing.T) {
	ring := orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	fc, b := FootprintBoundary(ring)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "model footprint", fc.Features[0].Properties["source"])
	assert.True(t, b.Contains(orb.Point{1, 1}))
}

func TestExampleConfig(t *testing.T) {
	sa, err := Load(filepath.Join("..", "..", "configs", "study.yaml"))
	require.NoError(t, err)

	rc, ok := sa.Raster(raster.RoleDepthToWater)
	require.True(t, ok)
	_, err = raster.ReadASCIIFile(sa.Path(rc.File))
	require.NoError(t, err)

	_, boundary, err := LoadBoundary(sa.Path(sa.Boundary))
	require.NoError(t, err)
	assert.True(t, boundary.Contains(orb.Point{-122.776, 45.575}))
}
