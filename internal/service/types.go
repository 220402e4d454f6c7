// Package service contains the depth-to-water query logic behind the API.
package service

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/raster"
)

// Render modes for a queried location.
const (
	RenderMarker = "marker"
	RenderCell   = "cell"
)

// Styling of the rendered location.
const (
	MarkerRadius    = 300.0
	CellFillOpacity = 0.5
)

// RasterReading is the value of one raster at the queried cell plus the
// layer statistics.
type RasterReading struct {
	Name    string      `json:"name" doc:"Layer name" example:"dtw"`
	Role    raster.Role `json:"role" doc:"What the layer measures" enum:"land_surface,depth_to_water,water_elevation,uncertainty"`
	Value   *float64    `json:"value" doc:"Cell value, null for nodata"`
	Minimum float64     `json:"minimum" doc:"Layer minimum"`
	Maximum float64     `json:"maximum" doc:"Layer maximum"`
	Mean    float64     `json:"mean" doc:"Layer mean"`
	Median  float64     `json:"median" doc:"Layer median"`
	NoData  *float64    `json:"nodata" doc:"Layer nodata marker, if any"`
}

// CellGeometry is the footprint of a model cell.
type CellGeometry struct {
	Row     int      `json:"row" doc:"Zero-based row from the north edge"`
	Col     int      `json:"col" doc:"Zero-based column from the west edge"`
	Model   orb.Ring `json:"model" doc:"Closed ring UL, UR, LR, LL in the raster projection"`
	LongLat orb.Ring `json:"longlat" doc:"Closed ring UL, UR, LR, LL in the lat/long projection"`
}

// Location is the answer to a map click.
type Location struct {
	Longitude float64 `json:"longitude" doc:"Queried longitude" example:"-122.6765"`
	Latitude  float64 `json:"latitude" doc:"Queried latitude" example:"45.5231"`
	Easting   float64 `json:"easting" doc:"X in the raster projection"`
	Northing  float64 `json:"northing" doc:"Y in the raster projection"`

	Cell    CellGeometry    `json:"cell"`
	Rasters []RasterReading `json:"rasters"`

	LandSurface      *float64 `json:"land_surface_elevation" doc:"Land-surface elevation"`
	DepthToWater     *float64 `json:"water_level" doc:"Estimated depth to groundwater"`
	WaterElevation   *float64 `json:"water_level_elevation" doc:"Estimated water elevation of groundwater"`
	Uncertainty      *float64 `json:"uncertainty" doc:"Uncertainty of the depth estimate (0-1)"`
	UncertaintyLabel string   `json:"uncertainty_label,omitempty" doc:"Uncertainty class" example:"Low (< 0.34)"`
	ZUnits           string   `json:"z_units" doc:"Units of elevations and depths" example:"ft"`

	ColorClass  int     `json:"color_class" doc:"Depth color class, -1 when depth is missing"`
	FillColor   string  `json:"fill_color,omitempty" doc:"Depth fill color (CSS)" example:"#0000e0"`
	RenderMode  string  `json:"render_mode" enum:"marker,cell" doc:"How the viewer draws the location"`
	Radius      float64 `json:"radius,omitempty" doc:"Marker radius in meters"`
	FillOpacity float64 `json:"fill_opacity" doc:"Fill opacity (0-1)"`

	Popup string `json:"popup,omitempty" doc:"Location Information popup (HTML)"`
}

// Coordinates is a cursor position expressed in several systems.
type Coordinates struct {
	Longitude    float64   `json:"longitude" doc:"Longitude (decimal degrees)"`
	Latitude     float64   `json:"latitude" doc:"Latitude (decimal degrees)"`
	LongitudeDMS string    `json:"longitude_dms" doc:"Longitude as DD° MM' SS.sss\" H"`
	LatitudeDMS  string    `json:"latitude_dms" doc:"Latitude as DD° MM' SS.sss\" H"`
	UTMZone      int       `json:"utm_zone" doc:"UTM zone (1-60)"`
	UTM          orb.Point `json:"utm" doc:"UTM easting and northing in meters"`
	Model        orb.Point `json:"model" doc:"X and Y in the raster projection"`
	ModelUnits   string    `json:"model_units" doc:"Units of the raster projection"`
	Row          *int      `json:"row,omitempty" doc:"Model row under the cursor"`
	Col          *int      `json:"col,omitempty" doc:"Model column under the cursor"`
}

// StudyInfo is the study-area configuration together with the computed map
// extent.
type StudyInfo struct {
	Title             string      `json:"title" doc:"Study area title"`
	LatLongProjection string      `json:"latlong_projection" doc:"Projection of map coordinates"`
	RasterProjection  string      `json:"raster_projection" doc:"Projection of the model grid"`
	Corners           geo.Corners `json:"corners" doc:"Model grid corners in the raster projection"`
	Extent            geo.Extent  `json:"extent" doc:"Map extent in the lat/long projection"`
	ZoomLevel         int         `json:"zoom_level" doc:"Initial map zoom"`
	MarkerZoom        int         `json:"marker_zoom" doc:"Zoom at which cells replace markers"`
	Classes           int         `json:"classes" doc:"Number of depth color classes"`
	XYUnits           string      `json:"xy_units" doc:"Units of the raster projection"`
	ZUnits            string      `json:"z_units" doc:"Units of elevations and depths"`
}

// LegendClass is one entry of the depth legend.
type LegendClass struct {
	Class int     `json:"class"`
	Color string  `json:"color" doc:"Fill color (CSS)"`
	Lower float64 `json:"lower" doc:"Lower value bound"`
	Upper float64 `json:"upper" doc:"Upper value bound"`
}

// Legend describes the depth color ramp.
type Legend struct {
	Minimum     float64       `json:"minimum" doc:"Depth raster minimum"`
	Maximum     float64       `json:"maximum" doc:"Depth raster maximum"`
	NiceMinimum float64       `json:"nice_minimum" doc:"Rounded axis minimum"`
	NiceMaximum float64       `json:"nice_maximum" doc:"Rounded axis maximum"`
	Interval    float64       `json:"interval" doc:"Axis tick interval"`
	Units       string        `json:"units"`
	Classes     []LegendClass `json:"classes"`
}
