// Package viewer contains the Datastar SSE handlers used by the map viewer.
package viewer

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/humastar"
	"github.com/joeblew999/plat-dtw/internal/service"
	"github.com/joeblew999/plat-dtw/internal/templates"
)

// PopupSelector is the element that receives the Location Information popup.
const PopupSelector = "#location-popup"

// Handler serves the viewer's hypermedia endpoints.
type Handler struct {
	location *service.LocationService
	renderer *templates.Renderer
	bus      *service.EventBus
}

func NewHandler(location *service.LocationService, renderer *templates.Renderer, bus *service.EventBus) *Handler {
	return &Handler{location: location, renderer: renderer, bus: bus}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/viewer/location", h.Location, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/events", h.Events, huma.OperationTags("viewer"))
}

// Location answers a map click sent as Datastar signals.
func (h *Handler) Location(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	lon, err := signals.Float("longitude")
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	lat, err := signals.Float("latitude")
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	zoom, err := signals.Int("zoom")
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	return humastar.Stream(func(sse humastar.SSE) {
		loc, err := h.location.Query(ctx, lon, lat, zoom)
		if err != nil {
			msg := userMessage(err)
			if html, rerr := h.renderer.Render("error", msg); rerr == nil {
				sse.Patch(html, PopupSelector)
			}
			sse.Signals(map[string]any{
				"error":      msg,
				"renderMode": "",
				"fillColor":  "",
				"colorClass": -1,
			})
			return
		}

		sse.Patch(loc.Popup, PopupSelector)
		sse.Signals(map[string]any{
			"error":       "",
			"renderMode":  loc.RenderMode,
			"fillColor":   loc.FillColor,
			"colorClass":  loc.ColorClass,
			"fillOpacity": loc.FillOpacity,
			"radius":      loc.Radius,
			"cell":        loc.Cell.LongLat,
		})
	}), nil
}

// Events streams map events to the viewer until the client disconnects.
func (h *Handler) Events(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			ch := h.bus.Subscribe()
			defer h.bus.Unsubscribe(ch)

			done := humaCtx.Context().Done()
			for {
				select {
				case <-done:
					return
				case ev, ok := <-ch:
					if !ok {
						return
					}
					sse.Signals(map[string]any{"lastEvent": ev})
				}
			}
		},
	}, nil
}

// userMessage hides internal failures from the popup.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrOutsideStudyArea), errors.Is(err, service.ErrOutsideGrid),
		errors.Is(err, geo.ErrInvalidInput):
		return err.Error()
	default:
		return "Unable to read the model at this location."
	}
}
