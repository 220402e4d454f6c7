package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	svc *Services
}

func NewInfoHandler(svc *Services) *InfoHandler {
	return &InfoHandler{svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Title    string   `json:"title" doc:"Study area title"`
	Store    string   `json:"store" doc:"Raster store backend" enum:"memory,duckdb"`
	Rasters  int      `json:"rasters" doc:"Number of loaded raster layers"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-dtw",
		Version:  Version,
		Store:    h.svc.StoreKind,
		Features: []string{"location", "coordinates", "reproject", "ramp", "legend", "basemaps", "viewer", "tiles"},
	}
	if h.svc.Study != nil {
		body.Title = h.svc.Study.Area().Title
	}
	if h.svc.Store != nil {
		if layers, err := h.svc.Store.Layers(ctx); err == nil {
			body.Rasters = len(layers)
		}
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
