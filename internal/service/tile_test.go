package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-dtw/internal/tiler"
)

func TestTileService(t *testing.T) {
	f := newFixture(t, defaultDTW)
	dir := t.TempDir()
	s := NewTileService(dir, f.location, f.study.Extent())

	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)

	tf, err := s.Generate(context.Background(), "depth.pmtiles", tiler.Options{MinZoom: 10, MaxZoom: 12})
	require.NoError(t, err)
	assert.Equal(t, "depth.pmtiles", tf.Name)
	assert.Equal(t, "/tiles/depth.pmtiles", tf.URL)
	assert.Equal(t, 10, tf.MinZoom)
	assert.Equal(t, 12, tf.MaxZoom)
	assert.Positive(t, tf.Tiles)

	// Unreadable archives are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(s.TilesDir(), "broken.pmtiles"), []byte("x"), 0644))

	files, err = s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, tf, files[0])
}

func TestTileServiceBadName(t *testing.T) {
	f := newFixture(t, defaultDTW)
	s := NewTileService(t.TempDir(), f.location, f.study.Extent())

	for _, name := range []string{"", "../escape", "a/b", "x y"} {
		_, err := s.Generate(context.Background(), name, tiler.Options{})
		assert.ErrorIs(t, err, ErrTileNameInvalid, name)
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2<<20))
}
