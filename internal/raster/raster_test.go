package raster

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGrid = `ncols 3
nrows 2
xllcorner 100
yllcorner 200
cellsize 10
NODATA_value -9999
1 2 3
4 -9999 6
`

func TestReadASCII(t *testing.T) {
	g, err := ReadASCII(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	assert.Equal(t, 3, g.Cols)
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 10.0, g.CellSize)
	assert.True(t, g.HasNoData)
	assert.Equal(t, -9999.0, g.NoData)
	assert.Equal(t, []float64{1, 2, 3, 4, -9999, 6}, g.Values)
}

func TestReadASCIICenterRegistration(t *testing.T) {
	src := "ncols 1\nnrows 1\nxllcenter 5\nyllcenter 5\ncellsize 10\n42\n"
	g, err := ReadASCII(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.XLLCorner)
	assert.Equal(t, 0.0, g.YLLCorner)
	assert.False(t, g.HasNoData)
}

func TestReadASCIIErrors(t *testing.T) {
	tests := map[string]string{
		"missing cellsize": "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\n1\n",
		"short data":       "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n",
		"bad value":        "ncols 1\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 x\n",
		"missing origin":   "ncols 1\nnrows 1\ncellsize 1\n1\n",
		"bad header":       "ncols one\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadASCII(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestReadASCIIFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtw.asc")
	require.NoError(t, os.WriteFile(path, []byte(sampleGrid), 0o644))

	g, err := ReadASCIIFile(path)
	require.NoError(t, err)
	assert.Len(t, g.Values, 6)

	_, err = ReadASCIIFile(filepath.Join(t.TempDir(), "missing.asc"))
	assert.Error(t, err)
}

func TestHeaderGeometry(t *testing.T) {
	g, err := ReadASCII(strings.NewReader(sampleGrid))
	require.NoError(t, err)
	h := g.Header

	assert.Equal(t, orb.Point{100, 220}, h.Origin())

	row, col, ok := h.RowCol(orb.Point{105, 215})
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	row, col, ok = h.RowCol(orb.Point{125, 201})
	require.True(t, ok)
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col)

	for _, p := range []orb.Point{{99, 210}, {131, 210}, {110, 199}, {110, 221}} {
		_, _, ok := h.RowCol(p)
		assert.False(t, ok, "point %v", p)
	}

	cell := h.Cell(1, 2)
	assert.Equal(t, [4]orb.Point{{120, 210}, {130, 210}, {130, 200}, {120, 200}}, cell)

	b := h.Bounds()
	assert.Equal(t, 100.0, b.MinX)
	assert.Equal(t, 200.0, b.MinY)
	assert.Equal(t, 130.0, b.MaxX)
	assert.Equal(t, 220.0, b.MaxY)
}

func TestComputeStats(t *testing.T) {
	g, err := ReadASCII(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	s := ComputeStats(g)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 1.0, s.Minimum)
	assert.Equal(t, 6.0, s.Maximum)
	assert.InDelta(t, 3.2, s.Mean, 1e-12)
	assert.Equal(t, 3.0, s.Median)

	g.Values[0] = -9999
	s = ComputeStats(g)
	assert.Equal(t, 3.5, s.Median)

	assert.Equal(t, Stats{}, ComputeStats(&Grid{Header: Header{Rows: 1, Cols: 1, HasNoData: true, NoData: 0}, Values: []float64{0}}))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	g, err := ReadASCII(strings.NewReader(sampleGrid))
	require.NoError(t, err)

	s := NewMemoryStore()
	require.NoError(t, s.Add(ctx, "dtw", RoleDepthToWater, g))
	require.NoError(t, s.Add(ctx, "lsd", RoleLandSurface, g))

	layers, err := s.Layers(ctx)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "dtw", layers[0].Name)
	assert.Equal(t, RoleDepthToWater, layers[0].Role)
	assert.Equal(t, 6.0, layers[0].Stats.Maximum)

	v, ok, err := s.Value(ctx, "dtw", 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6.0, v)

	_, ok, err = s.Value(ctx, "dtw", 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Value(ctx, "dtw", 5, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Value(ctx, "nope", 0, 0)
	assert.ErrorIs(t, err, ErrLayerNotFound)
	_, err = s.Layer(ctx, "nope")
	assert.ErrorIs(t, err, ErrLayerNotFound)

	assert.Error(t, s.Add(ctx, "bad", RoleUncertainty, &Grid{Header: Header{Rows: 2, Cols: 2}}))
	assert.NoError(t, s.Close())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUncertainty.Valid())
	assert.False(t, Role("depth").Valid())
}
