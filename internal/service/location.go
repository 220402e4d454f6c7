package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/metrics"
	"github.com/joeblew999/plat-dtw/internal/raster"
	"github.com/joeblew999/plat-dtw/internal/templates"
)

// Location query errors.
var (
	ErrOutsideStudyArea = errors.New("point is located outside the boundaries of the study")
	ErrOutsideGrid      = errors.New("point is located outside the model grid")
	ErrLayerNotFound    = raster.ErrLayerNotFound
)

// UncertaintyLabel classifies an uncertainty value.
func UncertaintyLabel(v float64) string {
	switch {
	case v <= 0.33:
		return "Low (< 0.34)"
	case v <= 0.67:
		return "Moderate (0.34 to 0.67)"
	default:
		return "High (> 0.67)"
	}
}

// LocationService answers map clicks.
type LocationService struct {
	study    *StudyService
	proj     geo.Projector
	store    raster.Store
	header   raster.Header
	renderer *templates.Renderer
	bus      *EventBus
}

// NewLocationService creates a location service. The depth-to-water raster
// defines the model grid used for row/column lookups. renderer and bus may
// be nil.
func NewLocationService(ctx context.Context, study *StudyService, proj geo.Projector, store raster.Store, renderer *templates.Renderer, bus *EventBus) (*LocationService, error) {
	ref, err := study.DepthLayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("reference raster: %w", err)
	}
	return &LocationService{
		study:    study,
		proj:     proj,
		store:    store,
		header:   ref.Header,
		renderer: renderer,
		bus:      bus,
	}, nil
}

// Header returns the model grid header.
func (s *LocationService) Header() raster.Header { return s.header }

// Query looks up the model cell under lon/lat and summarises every raster
// there. zoom selects between marker and cell rendering.
func (s *LocationService) Query(ctx context.Context, lon, lat float64, zoom int) (*Location, error) {
	start := time.Now()

	loc, err := s.query(ctx, lon, lat, zoom)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, geo.ErrInvalidInput):
		outcome = metrics.OutcomeInvalid
	case errors.Is(err, ErrOutsideStudyArea), errors.Is(err, ErrOutsideGrid):
		outcome = metrics.OutcomeOutside
	default:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveLocation(outcome, start)

	ev := Event{Type: "location", Outcome: outcome, Longitude: lon, Latitude: lat}
	if loc != nil {
		ev.Row, ev.Col, ev.FillColor = loc.Cell.Row, loc.Cell.Col, loc.FillColor
	}
	if s.bus != nil {
		s.bus.Publish(ev)
	}

	if err != nil {
		slog.Debug("location query failed", "longitude", lon, "latitude", lat, "outcome", outcome, "error", err)
		return nil, err
	}
	slog.Debug("location query", "longitude", lon, "latitude", lat,
		"row", loc.Cell.Row, "col", loc.Cell.Col, "render", loc.RenderMode, "elapsed", time.Since(start))
	return loc, nil
}

func (s *LocationService) query(ctx context.Context, lon, lat float64, zoom int) (*Location, error) {
	if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return nil, fmt.Errorf("%w: longitude and latitude must be finite", geo.ErrInvalidInput)
	}
	if zoom < 0 {
		return nil, fmt.Errorf("%w: zoom must not be negative", geo.ErrInvalidInput)
	}

	area := s.study.Area()
	p := orb.Point{lon, lat}
	if !s.study.Boundary().Contains(p) {
		return nil, ErrOutsideStudyArea
	}

	model, err := s.reproject(p, area.LatLongProjection, area.RasterProjection)
	if err != nil {
		return nil, err
	}
	row, col, ok := s.header.RowCol(model)
	if !ok {
		return nil, ErrOutsideGrid
	}

	loc := &Location{
		Longitude: lon,
		Latitude:  lat,
		Easting:   model[0],
		Northing:  model[1],
		ZUnits:    area.ZUnits,
	}

	if err := s.readRasters(ctx, loc, row, col); err != nil {
		return nil, err
	}
	if err := s.cellGeometry(loc, row, col); err != nil {
		return nil, err
	}
	s.colorize(ctx, loc)

	if zoom < area.MarkerZoom {
		loc.RenderMode = RenderMarker
		loc.Radius = MarkerRadius
	} else {
		loc.RenderMode = RenderCell
		loc.FillOpacity = CellFillOpacity
	}

	if s.renderer != nil {
		popup, err := s.renderer.Render("popup", loc)
		if err != nil {
			return nil, fmt.Errorf("render popup: %w", err)
		}
		loc.Popup = popup
	}
	return loc, nil
}

func (s *LocationService) readRasters(ctx context.Context, loc *Location, row, col int) error {
	for _, rc := range s.study.Area().Rasters {
		layer, err := s.store.Layer(ctx, rc.Name)
		if err != nil {
			return err
		}
		v, ok, err := s.store.Value(ctx, rc.Name, row, col)
		if err != nil {
			return err
		}

		reading := RasterReading{
			Name:    rc.Name,
			Role:    rc.Role,
			Minimum: layer.Stats.Minimum,
			Maximum: layer.Stats.Maximum,
			Mean:    layer.Stats.Mean,
			Median:  layer.Stats.Median,
		}
		if ok {
			reading.Value = ptr(v)
		}
		if layer.Header.HasNoData {
			reading.NoData = ptr(layer.Header.NoData)
		}
		loc.Rasters = append(loc.Rasters, reading)

		switch rc.Role {
		case raster.RoleLandSurface:
			loc.LandSurface = reading.Value
		case raster.RoleDepthToWater:
			loc.DepthToWater = reading.Value
		case raster.RoleWaterElevation:
			loc.WaterElevation = reading.Value
		case raster.RoleUncertainty:
			loc.Uncertainty = reading.Value
		}
	}

	if loc.LandSurface != nil && loc.DepthToWater != nil {
		loc.WaterElevation = ptr(*loc.LandSurface - *loc.DepthToWater)
	}
	if loc.Uncertainty != nil {
		loc.UncertaintyLabel = UncertaintyLabel(*loc.Uncertainty)
	}
	return nil
}

func (s *LocationService) cellGeometry(loc *Location, row, col int) error {
	area := s.study.Area()
	corners := s.header.Cell(row, col)

	model := orb.Ring{corners[0], corners[1], corners[2], corners[3], corners[0]}
	longlat := make(orb.Ring, len(model))
	for i, q := range model {
		p, err := s.reproject(q, area.RasterProjection, area.LatLongProjection)
		if err != nil {
			return fmt.Errorf("cell corner %d: %w", i, err)
		}
		longlat[i] = p
	}
	loc.Cell = CellGeometry{Row: row, Col: col, Model: model, LongLat: longlat}
	return nil
}

// colorize sets the fill from the depth value over the depth raster range.
func (s *LocationService) colorize(ctx context.Context, loc *Location) {
	loc.ColorClass = -1
	if loc.DepthToWater == nil {
		return
	}
	layer, err := s.study.DepthLayer(ctx)
	if err != nil {
		return
	}

	table := s.study.Ramp(0)
	class, ok := classOf(*loc.DepthToWater, layer, table)
	if !ok {
		return
	}
	loc.ColorClass = class
	loc.FillColor = table.Color(class).Hex()
}

// classOf classifies v over the layer range. A flat raster maps every value
// to the first class.
func classOf(v float64, layer raster.Layer, table geo.ColorTable) (int, bool) {
	class, err := geo.Classify(v, layer.Stats.Range(), len(table))
	if errors.Is(err, geo.ErrDegenerateRange) {
		return 0, true
	}
	return class, err == nil
}

func (s *LocationService) reproject(p orb.Point, from, to string) (orb.Point, error) {
	q, err := s.proj.Reproject(p, from, to)
	metrics.ObserveReprojection(err)
	return q, err
}

func ptr(v float64) *float64 { return &v }
