package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-dtw/internal/raster"
)

// RasterHandler serves raster layer metadata from the raster store.
type RasterHandler struct {
	store raster.Store
}

// NewRasterHandler creates a new raster handler.
func NewRasterHandler(store raster.Store) *RasterHandler {
	return &RasterHandler{store: store}
}

// RegisterRoutes registers raster routes with Huma.
func (h *RasterHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/rasters", h.ListRasters, huma.OperationTags("rasters"))
	huma.Get(api, "/api/v1/rasters/{name}", h.GetRaster, huma.OperationTags("rasters"))
}

// RastersOutput is the response for listing rasters.
type RastersOutput struct {
	Body struct {
		Rasters []raster.Layer `json:"rasters" doc:"Loaded raster layers"`
	}
}

// RasterInput selects one raster layer.
type RasterInput struct {
	Name string `path:"name" doc:"Raster layer name" example:"dtw"`
}

// ListRasters returns every loaded layer with its header and statistics.
func (h *RasterHandler) ListRasters(ctx context.Context, input *struct{}) (*RastersOutput, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("Raster store not available")
	}

	layers, err := h.store.Layers(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list rasters", err)
	}
	if layers == nil {
		layers = []raster.Layer{}
	}

	out := &RastersOutput{}
	out.Body.Rasters = layers
	return out, nil
}

// GetRaster returns one layer.
func (h *RasterHandler) GetRaster(ctx context.Context, input *RasterInput) (*struct{ Body raster.Layer }, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("Raster store not available")
	}

	layer, err := h.store.Layer(ctx, input.Name)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &struct{ Body raster.Layer }{Body: layer}, nil
}
