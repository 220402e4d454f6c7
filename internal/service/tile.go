package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/pmtiles"
	"github.com/joeblew999/plat-dtw/internal/tiler"
)

// ErrTileNameInvalid reports an archive name that is not a plain file name.
var ErrTileNameInvalid = errors.New("tile archive name must be letters, digits, '-' or '_'")

var tileName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// TileFile describes one PMTiles archive in the tiles directory.
type TileFile struct {
	Name    string `json:"name" doc:"File name" example:"depth.pmtiles"`
	URL     string `json:"url" doc:"Path the archive is served from" example:"/tiles/depth.pmtiles"`
	Size    string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	MinZoom int    `json:"min_zoom"`
	MaxZoom int    `json:"max_zoom"`
	Tiles   uint64 `json:"tiles" doc:"Number of tiles in the archive"`
}

// TileService writes and lists depth overlay archives.
type TileService struct {
	tilesDir string
	location *LocationService
	extent   geo.Extent
}

// NewTileService creates a tile service rooted at dataDir/tiles.
func NewTileService(dataDir string, location *LocationService, extent geo.Extent) *TileService {
	return &TileService{
		tilesDir: filepath.Join(dataDir, "tiles"),
		location: location,
		extent:   extent,
	}
}

// TilesDir returns the path to the tiles directory.
func (s *TileService) TilesDir() string {
	return s.tilesDir
}

// Generate tiles the classified depth cells into <name>.pmtiles.
func (s *TileService) Generate(ctx context.Context, name string, opts tiler.Options) (TileFile, error) {
	name = strings.TrimSuffix(name, ".pmtiles")
	if !tileName.MatchString(name) {
		return TileFile{}, fmt.Errorf("%w: %q", ErrTileNameInvalid, name)
	}
	path := filepath.Join(s.tilesDir, name+".pmtiles")
	if err := s.WriteFile(ctx, path, opts); err != nil {
		return TileFile{}, err
	}
	return s.describe(path)
}

// WriteFile tiles the classified depth cells into the archive at path.
func (s *TileService) WriteFile(ctx context.Context, path string, opts tiler.Options) error {
	fc, err := s.location.DepthCells(ctx)
	if err != nil {
		return err
	}
	if err := tiler.WriteFile(ctx, path, fc, opts, s.extent); err != nil {
		return err
	}
	slog.Info("depth tiles written", "path", path, "cells", len(fc.Features))
	return nil
}

// List returns all PMTiles archives in the tiles directory.
func (s *TileService) List() ([]TileFile, error) {
	entries, err := os.ReadDir(s.tilesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TileFile{}, nil
		}
		return nil, err
	}

	files := []TileFile{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pmtiles" {
			continue
		}
		f, err := s.describe(filepath.Join(s.tilesDir, entry.Name()))
		if err != nil {
			slog.Warn("skipping tile archive", "file", entry.Name(), "error", err)
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *TileService) describe(path string) (TileFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return TileFile{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return TileFile{}, err
	}
	buf := make([]byte, pmtiles.HeaderLen)
	if _, err := io.ReadFull(f, buf); err != nil {
		return TileFile{}, fmt.Errorf("%w: %v", pmtiles.ErrBadHeader, err)
	}
	h, err := pmtiles.ReadHeader(buf)
	if err != nil {
		return TileFile{}, err
	}

	name := filepath.Base(path)
	return TileFile{
		Name:    name,
		URL:     "/tiles/" + name,
		Size:    formatSize(info.Size()),
		MinZoom: int(h.MinZoom),
		MaxZoom: int(h.MaxZoom),
		Tiles:   h.TileEntries,
	}, nil
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
