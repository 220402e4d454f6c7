package api

import (
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/raster"
	"github.com/joeblew999/plat-dtw/internal/service"
)

// toHTTPError maps service errors onto Huma status errors.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, geo.ErrInvalidInput), errors.Is(err, service.ErrTileNameInvalid):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, service.ErrOutsideStudyArea), errors.Is(err, service.ErrOutsideGrid):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, raster.ErrLayerNotFound), errors.Is(err, service.ErrBasemapNotFound):
		return huma.Error404NotFound(err.Error())
	default:
		slog.Error("request failed", "error", err)
		return huma.Error500InternalServerError("internal error", err)
	}
}
