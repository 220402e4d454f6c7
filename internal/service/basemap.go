package service

import (
	"errors"
	"fmt"
)

// ErrBasemapNotFound is returned by BasemapService.Get for unknown ids.
var ErrBasemapNotFound = errors.New("basemap not found")

// Basemap is a tile layer the viewer can switch to.
type Basemap struct {
	ID          string  `json:"id" doc:"Basemap identifier" example:"esri-topo"`
	Name        string  `json:"name" doc:"Display name" example:"ESRI Topo"`
	URL         string  `json:"url" doc:"XYZ tile URL template"`
	Attribution string  `json:"attribution" doc:"Attribution HTML"`
	MaxZoom     int     `json:"maxZoom" doc:"Maximum zoom level" example:"19"`
	Opacity     float64 `json:"opacity" minimum:"0" maximum:"1" doc:"Layer opacity (0-1)" example:"1"`
	Default     bool    `json:"default" doc:"Whether the viewer starts on this basemap"`
}

const (
	esriCopyright = "Copyright: &copy; 2013 Esri, DeLorme, NAVTEQ"
	esriNatGeo    = "National Geographic, Esri, DeLorme, NAVTEQ, UNEP-WCMC, USGS, NASA, ESA, METI, NRCAN, GEBCO, NOAA, iPC"
	doiLinks      = `<a href="https://www.doi.gov">U.S. Department of the Interior</a> | <a href="https://www.usgs.gov">U.S. Geological Survey</a> | <a href="https://www.usgs.gov/laws/policies_notices.html">Policies</a>`
)

var basemaps = []Basemap{
	{
		ID:          "esri-topo",
		Name:        "ESRI Topo",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Topo_Map/MapServer/tile/{z}/{y}/{x}",
		Attribution: "MRLC, State of Oregon, State of Oregon DOT, State of Oregon GEO, Esri, DeLorme, HERE, TomTom, USGS, NGA, EPA, NPS, U.S. Forest Service",
		MaxZoom:     19,
		Opacity:     1,
		Default:     true,
	},
	{
		ID:          "esri-gray",
		Name:        "ESRI Gray",
		URL:         "https://services.arcgisonline.com/ArcGIS/rest/services/Canvas/World_Light_Gray_Base/MapServer/tile/{z}/{y}/{x}",
		Attribution: esriCopyright,
		MaxZoom:     16,
		Opacity:     1,
	},
	{
		ID:          "esri-streets",
		Name:        "ESRI Streets",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Street_Map/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Sources: Esri, DeLorme, NAVTEQ, USGS, Intermap, iPC, NRCAN, Esri Japan, METI, Esri China (Hong Kong), Esri (Thailand), TomTom, 2013",
		MaxZoom:     19,
		Opacity:     1,
	},
	{
		ID:          "esri-imagery",
		Name:        "ESRI Imagery",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Source: Esri, DigitalGlobe, GeoEye, i-cubed, USDA, USGS, AEX, Getmapping, Aerogrid, IGN, IGP, swisstopo, and the GIS User Community",
		MaxZoom:     19,
		Opacity:     1,
	},
	{
		ID:          "esri-usa-topo",
		Name:        "ESRI USA Topo",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/USA_Topo_Maps/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Copyright:&copy; 2013 National Geographic Society, i-cubed",
		MaxZoom:     15,
		Opacity:     0.7,
	},
	{
		ID:          "esri-natgeo",
		Name:        "ESRI Nat Geo",
		URL:         "https://services.arcgisonline.com/ArcGIS/rest/services/NatGeo_World_Map/MapServer/tile/{z}/{y}/{x}",
		Attribution: esriNatGeo,
		MaxZoom:     16,
		Opacity:     1,
	},
	{
		ID:          "national-map",
		Name:        "National Map",
		URL:         "https://basemap.nationalmap.gov/arcgis/rest/services/USGSTopo/MapServer/tile/{z}/{y}/{x}",
		Attribution: doiLinks,
		MaxZoom:     20,
		Opacity:     1,
	},
}

// BasemapService serves the fixed basemap catalog.
type BasemapService struct {
	byID map[string]int
}

// NewBasemapService creates a new basemap service.
func NewBasemapService() *BasemapService {
	s := &BasemapService{byID: make(map[string]int, len(basemaps))}
	for i, b := range basemaps {
		s.byID[b.ID] = i
	}
	return s
}

// List returns every basemap, default first.
func (s *BasemapService) List() []Basemap {
	out := make([]Basemap, len(basemaps))
	copy(out, basemaps)
	return out
}

// Get returns one basemap.
func (s *BasemapService) Get(id string) (Basemap, error) {
	i, ok := s.byID[id]
	if !ok {
		return Basemap{}, fmt.Errorf("%w: %s", ErrBasemapNotFound, id)
	}
	return basemaps[i], nil
}

// Default returns the basemap the viewer starts on.
func (s *BasemapService) Default() Basemap {
	for _, b := range basemaps {
		if b.Default {
			return b
		}
	}
	return basemaps[0]
}
