package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-dtw/internal/config"
	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/raster"
)

// StudyService holds the study area, its computed extent and boundary.
// Everything is fixed after NewStudyService returns.
type StudyService struct {
	area       *config.StudyArea
	extent     geo.Extent
	boundary   geo.Boundary
	boundaryFC *geojson.FeatureCollection
	store      raster.Store
}

// NewStudyService computes the map extent and loads the boundary. Without a
// boundary file the reprojected model footprint is used.
func NewStudyService(area *config.StudyArea, proj geo.Projector, store raster.Store) (*StudyService, error) {
	bounds := geo.ComputeBounds
	if area.StrictBounds {
		bounds = geo.ComputeBoundsStrict
	}
	extent, err := bounds(proj, area.Corners(), area.RasterProjection, area.LatLongProjection)
	if err != nil {
		return nil, fmt.Errorf("compute study extent: %w", err)
	}

	s := &StudyService{area: area, extent: extent, store: store}
	if area.Boundary != "" {
		s.boundaryFC, s.boundary, err = config.LoadBoundary(area.Path(area.Boundary))
		if err != nil {
			return nil, err
		}
	} else {
		s.boundaryFC, s.boundary = config.FootprintBoundary(extent.Footprint)
	}

	slog.Info("study area ready",
		"title", area.Title,
		"min_x", extent.Box.MinX, "min_y", extent.Box.MinY,
		"max_x", extent.Box.MaxX, "max_y", extent.Box.MaxY,
		"boundary", area.Boundary != "",
	)
	return s, nil
}

// LoadRasters reads every configured raster file into store.
func LoadRasters(ctx context.Context, area *config.StudyArea, store raster.Store) error {
	for _, rc := range area.Rasters {
		path := area.Path(rc.File)
		g, err := raster.ReadASCIIFile(path)
		if err != nil {
			return fmt.Errorf("raster %s: %w", rc.Name, err)
		}
		if err := store.Add(ctx, rc.Name, rc.Role, g); err != nil {
			return fmt.Errorf("raster %s: %w", rc.Name, err)
		}
		slog.Info("raster loaded", "name", rc.Name, "role", rc.Role, "file", path,
			"ncols", g.Cols, "nrows", g.Rows, "cellsize", g.CellSize)
	}
	return nil
}

// Area returns the study-area configuration.
func (s *StudyService) Area() *config.StudyArea { return s.area }

// Extent returns the computed map extent.
func (s *StudyService) Extent() geo.Extent { return s.extent }

// Boundary returns the study-area outline used for containment tests.
func (s *StudyService) Boundary() geo.Boundary { return s.boundary }

// BoundaryGeoJSON returns the study-area outline as GeoJSON.
func (s *StudyService) BoundaryGeoJSON() *geojson.FeatureCollection { return s.boundaryFC }

// Info summarises the study area for the viewer.
func (s *StudyService) Info() StudyInfo {
	a := s.area
	return StudyInfo{
		Title:             a.Title,
		LatLongProjection: a.LatLongProjection,
		RasterProjection:  a.RasterProjection,
		Corners:           a.Corners(),
		Extent:            s.extent,
		ZoomLevel:         a.ZoomLevel,
		MarkerZoom:        a.MarkerZoom,
		Classes:           a.Classes,
		XYUnits:           a.XYUnits,
		ZUnits:            a.ZUnits,
	}
}

// Ramp returns the color table for classes, or the configured class count
// when classes is zero.
func (s *StudyService) Ramp(classes int) geo.ColorTable {
	if classes <= 0 {
		classes = s.area.Classes
	}
	low, high := s.area.Colors()
	return geo.Ramp(classes, low, high)
}

// DepthLayer returns the depth-to-water raster.
func (s *StudyService) DepthLayer(ctx context.Context) (raster.Layer, error) {
	rc, ok := s.area.Raster(raster.RoleDepthToWater)
	if !ok {
		return raster.Layer{}, fmt.Errorf("%w: no depth_to_water raster configured", raster.ErrLayerNotFound)
	}
	return s.store.Layer(ctx, rc.Name)
}

// Legend describes the depth classes with their value bounds. The bounds
// follow the raster minimum and maximum used to classify cells.
func (s *StudyService) Legend(ctx context.Context) (Legend, error) {
	layer, err := s.DepthLayer(ctx)
	if err != nil {
		return Legend{}, err
	}

	r := layer.Stats.Range()
	table := s.Ramp(0)
	n := len(table)
	lo, hi, interval := geo.NiceRange(r.Minimum, r.Maximum)

	step := (r.Maximum - r.Minimum) / float64(n)
	classes := make([]LegendClass, n)
	for i, c := range table {
		classes[i] = LegendClass{
			Class: i,
			Color: c.Hex(),
			Lower: r.Minimum + float64(i)*step,
			Upper: r.Minimum + float64(i+1)*step,
		}
	}
	return Legend{
		Minimum:     r.Minimum,
		Maximum:     r.Maximum,
		NiceMinimum: lo,
		NiceMaximum: hi,
		Interval:    interval,
		Units:       s.area.ZUnits,
		Classes:     classes,
	}, nil
}
