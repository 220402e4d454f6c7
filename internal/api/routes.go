// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/metrics"
	"github.com/joeblew999/plat-dtw/internal/raster"
	"github.com/joeblew999/plat-dtw/internal/service"
	"github.com/joeblew999/plat-dtw/internal/tiler"
)

// Version is reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Study       *service.StudyService
	Location    *service.LocationService
	Coordinates *service.CoordinateService
	Basemap     *service.BasemapService
	Tiles       *service.TileService
	Store       raster.Store
	StoreKind   string
	Projector   *geo.Reprojector
}

// RegisterRoutes registers every REST route on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(svc).RegisterRoutes(api)
	NewRasterHandler(svc.Store).RegisterRoutes(api)
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Basemap ID" example:"esri-topo"`
}

type PointInput struct {
	Longitude float64 `query:"longitude" required:"true" minimum:"-180" maximum:"180" doc:"Longitude in decimal degrees" example:"-122.6765"`
	Latitude  float64 `query:"latitude" required:"true" minimum:"-90" maximum:"90" doc:"Latitude in decimal degrees" example:"45.5231"`
}

type LocationInput struct {
	PointInput
	Zoom int `query:"zoom" minimum:"0" maximum:"22" default:"0" doc:"Current map zoom" example:"12"`
}

type ReprojectBody struct {
	X    float64 `json:"x" doc:"X or longitude" example:"-122.6765"`
	Y    float64 `json:"y" doc:"Y or latitude" example:"45.5231"`
	From string  `json:"from" required:"true" minLength:"1" doc:"Source reference system (PROJ.4 or EPSG alias)" example:"EPSG:4326"`
	To   string  `json:"to" required:"true" minLength:"1" doc:"Target reference system (PROJ.4 or EPSG alias)" example:"EPSG:32610"`
}

type RampInput struct {
	Classes int `query:"classes" minimum:"0" maximum:"256" default:"0" doc:"Number of classes, 0 for the configured count"`
}

type RampColor struct {
	Class int     `json:"class"`
	Color string  `json:"color" doc:"CSS color" example:"#0000e0"`
	RGB   geo.RGB `json:"rgb"`
}

type RampBody struct {
	Classes int         `json:"classes"`
	Colors  []RampColor `json:"colors"`
}

type TileGenerateBody struct {
	Name    string `json:"name" required:"true" pattern:"^[A-Za-z0-9_-]+$" doc:"Archive name without extension" example:"depth"`
	MinZoom int    `json:"min_zoom,omitempty" minimum:"0" maximum:"16" default:"8" doc:"Minimum zoom level"`
	MaxZoom int    `json:"max_zoom,omitempty" minimum:"0" maximum:"16" default:"14" doc:"Maximum zoom level"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
}

// APIHandler holds the REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterStudy registers study-area routes.
func (h *APIHandler) RegisterStudy(api huma.API) {
	huma.Get(api, "/api/v1/config", h.GetConfig, huma.OperationTags("study"))
	huma.Get(api, "/api/v1/boundary", h.GetBoundary, huma.OperationTags("study"))
}

// RegisterBasemaps registers basemap catalog routes.
func (h *APIHandler) RegisterBasemaps(api huma.API) {
	huma.Get(api, "/api/v1/basemaps", h.GetBasemaps, huma.OperationTags("basemaps"))
	huma.Get(api, "/api/v1/basemaps/{id}", h.GetBasemap, huma.OperationTags("basemaps"))
}

// RegisterLocation registers point query routes.
func (h *APIHandler) RegisterLocation(api huma.API) {
	huma.Get(api, "/api/v1/location", h.GetLocation, huma.OperationTags("location"))
	huma.Get(api, "/api/v1/coordinates", h.GetCoordinates, huma.OperationTags("location"))
	huma.Post(api, "/api/v1/reproject", h.Reproject, huma.OperationTags("location"))
}

// RegisterRamp registers color ramp routes.
func (h *APIHandler) RegisterRamp(api huma.API) {
	huma.Get(api, "/api/v1/ramp", h.GetRamp, huma.OperationTags("ramp"))
	huma.Get(api, "/api/v1/legend", h.GetLegend, huma.OperationTags("ramp"))
}

// RegisterTiles registers depth overlay tile routes.
func (h *APIHandler) RegisterTiles(api huma.API) {
	huma.Get(api, "/api/v1/tiles", h.ListTiles, huma.OperationTags("tiles"))
	huma.Post(api, "/api/v1/tiles", h.GenerateTiles, huma.OperationTags("tiles"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetConfig(ctx context.Context, input *struct{}) (*struct{ Body service.StudyInfo }, error) {
	if h.svc.Study == nil {
		return nil, huma.Error503ServiceUnavailable("study area not loaded")
	}
	return &struct{ Body service.StudyInfo }{Body: h.svc.Study.Info()}, nil
}

func (h *APIHandler) GetBoundary(ctx context.Context, input *struct{}) (*struct{ Body *geojson.FeatureCollection }, error) {
	if h.svc.Study == nil {
		return nil, huma.Error503ServiceUnavailable("study area not loaded")
	}
	return &struct{ Body *geojson.FeatureCollection }{Body: h.svc.Study.BoundaryGeoJSON()}, nil
}

func (h *APIHandler) GetBasemaps(ctx context.Context, input *struct{}) (*struct{ Body []service.Basemap }, error) {
	return &struct{ Body []service.Basemap }{Body: h.svc.Basemap.List()}, nil
}

func (h *APIHandler) GetBasemap(ctx context.Context, input *IDInput) (*struct{ Body service.Basemap }, error) {
	b, err := h.svc.Basemap.Get(input.ID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body service.Basemap }{Body: b}, nil
}

func (h *APIHandler) GetLocation(ctx context.Context, input *LocationInput) (*struct{ Body *service.Location }, error) {
	if h.svc.Location == nil {
		return nil, huma.Error503ServiceUnavailable("location service not available")
	}
	loc, err := h.svc.Location.Query(ctx, input.Longitude, input.Latitude, input.Zoom)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body *service.Location }{Body: loc}, nil
}

func (h *APIHandler) GetCoordinates(ctx context.Context, input *PointInput) (*struct{ Body *service.Coordinates }, error) {
	if h.svc.Coordinates == nil {
		return nil, huma.Error503ServiceUnavailable("coordinate service not available")
	}
	c, err := h.svc.Coordinates.Describe(input.Longitude, input.Latitude)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body *service.Coordinates }{Body: c}, nil
}

func (h *APIHandler) Reproject(ctx context.Context, input *struct{ Body ReprojectBody }) (*struct{ Body ReprojectBody }, error) {
	in := input.Body
	p, err := h.svc.Projector.Reproject(orb.Point{in.X, in.Y}, in.From, in.To)
	metrics.ObserveReprojection(err)
	if err != nil {
		if errors.Is(err, geo.ErrProjection) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, toHTTPError(err)
	}
	return &struct{ Body ReprojectBody }{Body: ReprojectBody{X: p[0], Y: p[1], From: in.From, To: in.To}}, nil
}

func (h *APIHandler) GetRamp(ctx context.Context, input *RampInput) (*struct{ Body RampBody }, error) {
	table := h.svc.Study.Ramp(input.Classes)
	colors := make([]RampColor, len(table))
	for i, c := range table {
		colors[i] = RampColor{Class: i, Color: c.Hex(), RGB: c}
	}
	return &struct{ Body RampBody }{Body: RampBody{Classes: len(table), Colors: colors}}, nil
}

func (h *APIHandler) GetLegend(ctx context.Context, input *struct{}) (*struct{ Body service.Legend }, error) {
	legend, err := h.svc.Study.Legend(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body service.Legend }{Body: legend}, nil
}

func (h *APIHandler) ListTiles(ctx context.Context, input *struct{}) (*struct{ Body []service.TileFile }, error) {
	if h.svc.Tiles == nil {
		return nil, huma.Error503ServiceUnavailable("tile service not available")
	}
	files, err := h.svc.Tiles.List()
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body []service.TileFile }{Body: files}, nil
}

func (h *APIHandler) GenerateTiles(ctx context.Context, input *struct{ Body TileGenerateBody }) (*struct{ Body service.TileFile }, error) {
	if h.svc.Tiles == nil {
		return nil, huma.Error503ServiceUnavailable("tile service not available")
	}
	in := input.Body
	if in.MinZoom > in.MaxZoom {
		return nil, huma.Error400BadRequest("min_zoom must not exceed max_zoom")
	}
	f, err := h.svc.Tiles.Generate(ctx, in.Name, tiler.Options{MinZoom: in.MinZoom, MaxZoom: in.MaxZoom})
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body service.TileFile }{Body: f}, nil
}
