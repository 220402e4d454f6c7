package duckstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-dtw/internal/db"
	"github.com/joeblew999/plat-dtw/internal/raster"
)

const sampleGrid = `ncols 3
nrows 2
xllcorner 100
yllcorner 200
cellsize 10
nodata_value -9999
1 2 3
4 -9999 6
`

func newStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(db.Config{})
	require.NoError(t, err)

	s, err := NewOwned(context.Background(), conn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreMatchesMemoryStore(t *testing.T) {
	ctx := context.Background()
	g, err := raster.ReadASCII(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	duck := newStore(t)
	mem := raster.NewMemoryStore()
	for _, s := range []raster.Store{duck, mem} {
		require.NoError(t, s.Add(ctx, "dtw", raster.RoleDepthToWater, g))
	}

	want, err := mem.Layer(ctx, "dtw")
	require.NoError(t, err)
	got, err := duck.Layer(ctx, "dtw")
	require.NoError(t, err)

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Role, got.Role)
	assert.Equal(t, want.Header, got.Header)
	assert.Equal(t, want.Stats.Count, got.Stats.Count)
	assert.InDelta(t, want.Stats.Minimum, got.Stats.Minimum, 1e-9)
	assert.InDelta(t, want.Stats.Maximum, got.Stats.Maximum, 1e-9)
	assert.InDelta(t, want.Stats.Mean, got.Stats.Mean, 1e-9)
	assert.InDelta(t, want.Stats.Median, got.Stats.Median, 1e-9)

	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			wv, wok, err := mem.Value(ctx, "dtw", row, col)
			require.NoError(t, err)
			gv, gok, err := duck.Value(ctx, "dtw", row, col)
			require.NoError(t, err)
			assert.Equal(t, wok, gok, "cell %d,%d", row, col)
			assert.Equal(t, wv, gv, "cell %d,%d", row, col)
		}
	}
}

func TestStoreReplaceAndList(t *testing.T) {
	ctx := context.Background()
	g, err := raster.ReadASCII(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	s := newStore(t)
	require.NoError(t, s.Add(ctx, "lsd", raster.RoleLandSurface, g))
	require.NoError(t, s.Add(ctx, "dtw", raster.RoleDepthToWater, g))

	g.Values[0] = 50
	require.NoError(t, s.Add(ctx, "lsd", raster.RoleLandSurface, g))

	layers, err := s.Layers(ctx)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "dtw", layers[0].Name)
	assert.Equal(t, "lsd", layers[1].Name)
	assert.Equal(t, 50.0, layers[1].Stats.Maximum)
	assert.Equal(t, 5, layers[1].Stats.Count)
}

func TestStoreMissingLayer(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Layer(ctx, "nope")
	assert.ErrorIs(t, err, raster.ErrLayerNotFound)

	_, _, err = s.Value(ctx, "nope", 0, 0)
	assert.ErrorIs(t, err, raster.ErrLayerNotFound)

	err = s.Add(ctx, "bad", raster.RoleDepthToWater, &raster.Grid{Header: raster.Header{Rows: 1, Cols: 1}})
	assert.ErrorIs(t, err, raster.ErrFormat)
}
