package service

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/metrics"
	"github.com/joeblew999/plat-dtw/internal/raster"
)

// CoordinateService converts a cursor position into the readouts shown
// under the map.
type CoordinateService struct {
	study  *StudyService
	proj   geo.Projector
	header raster.Header
}

// NewCoordinateService creates a coordinate service over the model grid
// described by header.
func NewCoordinateService(study *StudyService, proj geo.Projector, header raster.Header) *CoordinateService {
	return &CoordinateService{study: study, proj: proj, header: header}
}

// Describe expresses lon/lat as DMS, UTM and model coordinates. The row and
// column are set only when the point falls on the model grid.
func (s *CoordinateService) Describe(lon, lat float64) (*Coordinates, error) {
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return nil, fmt.Errorf("%w: longitude and latitude must be finite", geo.ErrInvalidInput)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: (%v, %v) is not a geographic coordinate", geo.ErrInvalidInput, lon, lat)
	}

	area := s.study.Area()
	p := orb.Point{lon, lat}

	zone := geo.UTMZone(lon)
	utm, err := s.proj.Reproject(p, area.LatLongProjection, geo.UTMDefinition(zone, lat < 0))
	metrics.ObserveReprojection(err)
	if err != nil {
		return nil, fmt.Errorf("utm: %w", err)
	}

	model, err := s.proj.Reproject(p, area.LatLongProjection, area.RasterProjection)
	metrics.ObserveReprojection(err)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	c := &Coordinates{
		Longitude:    lon,
		Latitude:     lat,
		LongitudeDMS: geo.LongitudeDMS(lon).String(),
		LatitudeDMS:  geo.LatitudeDMS(lat).String(),
		UTMZone:      zone,
		UTM:          utm,
		Model:        model,
		ModelUnits:   area.XYUnits,
	}
	if row, col, ok := s.header.RowCol(model); ok {
		c.Row, c.Col = &row, &col
	}
	return c, nil
}
