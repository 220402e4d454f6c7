// Package config loads the study-area description that drives the map.
package config

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/viper"

	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/raster"
)

// RasterConfig names one raster layer and the file it is read from.
type RasterConfig struct {
	Name string      `mapstructure:"name" json:"name"`
	File string      `mapstructure:"file" json:"file"`
	Role raster.Role `mapstructure:"role" json:"role"`
}

// StudyArea is the loaded study-area configuration. It is not modified after
// Load returns.
type StudyArea struct {
	Title             string `mapstructure:"title" json:"title"`
	LatLongProjection string `mapstructure:"latlong_projection" json:"latlong_projection"`
	RasterProjection  string `mapstructure:"raster_projection" json:"raster_projection"`

	NorthwestX float64 `mapstructure:"northwest_x" json:"northwest_x"`
	NorthwestY float64 `mapstructure:"northwest_y" json:"northwest_y"`
	NortheastX float64 `mapstructure:"northeast_x" json:"northeast_x"`
	NortheastY float64 `mapstructure:"northeast_y" json:"northeast_y"`
	SoutheastX float64 `mapstructure:"southeast_x" json:"southeast_x"`
	SoutheastY float64 `mapstructure:"southeast_y" json:"southeast_y"`
	SouthwestX float64 `mapstructure:"southwest_x" json:"southwest_x"`
	SouthwestY float64 `mapstructure:"southwest_y" json:"southwest_y"`

	ZoomLevel    int            `mapstructure:"zoom_level" json:"zoom_level"`
	Boundary     string         `mapstructure:"boundary" json:"boundary,omitempty"`
	Rasters      []RasterConfig `mapstructure:"rasters" json:"rasters"`
	Classes      int            `mapstructure:"classes" json:"classes"`
	LowColor     string         `mapstructure:"low_color" json:"low_color"`
	HighColor    string         `mapstructure:"high_color" json:"high_color"`
	MarkerZoom   int            `mapstructure:"marker_zoom" json:"marker_zoom"`
	StrictBounds bool           `mapstructure:"strict_bounds" json:"strict_bounds"`
	XYUnits      string         `mapstructure:"xy_units" json:"xy_units"`
	ZUnits       string         `mapstructure:"z_units" json:"z_units"`

	// dir is the directory of the config file; relative paths resolve
	// against it.
	dir string
}

// Load reads a study area from a JSON or YAML file. Any key can be
// overridden by an environment variable: DTW_ZOOM_LEVEL → zoom_level.
func Load(path string) (*StudyArea, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read study area %s: %w", path, err)
	}

	v.SetEnvPrefix("DTW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var sa StudyArea
	if err := v.Unmarshal(&sa); err != nil {
		return nil, fmt.Errorf("unmarshal study area: %w", err)
	}
	sa.dir = filepath.Dir(path)

	if err := sa.Validate(); err != nil {
		return nil, err
	}
	return &sa, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "Depth to Groundwater")
	v.SetDefault("latlong_projection", "EPSG:4326")
	v.SetDefault("zoom_level", 10)
	v.SetDefault("classes", geo.DefaultClassCount)
	v.SetDefault("low_color", geo.DefaultLowColor.Hex())
	v.SetDefault("high_color", geo.DefaultHighColor.Hex())
	v.SetDefault("marker_zoom", 13)
	v.SetDefault("strict_bounds", false)
	v.SetDefault("xy_units", "m")
	v.SetDefault("z_units", "ft")
}

// Validate checks the study area and reports every problem found.
func (s *StudyArea) Validate() error {
	var errs []string

	for key, def := range map[string]string{
		"latlong_projection": s.LatLongProjection,
		"raster_projection":  s.RasterProjection,
	} {
		if def == "" {
			errs = append(errs, key+" is required")
			continue
		}
		if err := geo.Validate(def); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}

	for name, p := range map[string]float64{
		"northwest_x": s.NorthwestX, "northwest_y": s.NorthwestY,
		"northeast_x": s.NortheastX, "northeast_y": s.NortheastY,
		"southeast_x": s.SoutheastX, "southeast_y": s.SoutheastY,
		"southwest_x": s.SouthwestX, "southwest_y": s.SouthwestY,
	} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			errs = append(errs, name+" must be finite")
		}
	}
	if s.NortheastX <= s.NorthwestX {
		errs = append(errs, "northeast_x must be east of northwest_x")
	}
	if s.NorthwestY <= s.SouthwestY {
		errs = append(errs, "northwest_y must be north of southwest_y")
	}

	if s.ZoomLevel < 0 || s.ZoomLevel > 22 {
		errs = append(errs, fmt.Sprintf("zoom_level must be 0-22, got %d", s.ZoomLevel))
	}
	if s.MarkerZoom < 0 || s.MarkerZoom > 22 {
		errs = append(errs, fmt.Sprintf("marker_zoom must be 0-22, got %d", s.MarkerZoom))
	}
	if s.Classes < 1 {
		errs = append(errs, fmt.Sprintf("classes must be positive, got %d", s.Classes))
	}
	if _, err := geo.ParseHex(s.LowColor); err != nil {
		errs = append(errs, fmt.Sprintf("low_color: %v", err))
	}
	if _, err := geo.ParseHex(s.HighColor); err != nil {
		errs = append(errs, fmt.Sprintf("high_color: %v", err))
	}

	names := make(map[string]bool, len(s.Rasters))
	roles := make(map[raster.Role]bool, len(s.Rasters))
	for i, r := range s.Rasters {
		switch {
		case r.Name == "":
			errs = append(errs, fmt.Sprintf("rasters[%d].name is required", i))
		case names[r.Name]:
			errs = append(errs, fmt.Sprintf("rasters[%d]: duplicate name %q", i, r.Name))
		}
		names[r.Name] = true
		if r.File == "" {
			errs = append(errs, fmt.Sprintf("rasters[%d].file is required", i))
		}
		if !r.Role.Valid() {
			errs = append(errs, fmt.Sprintf("rasters[%d]: unknown role %q", i, r.Role))
		} else if roles[r.Role] {
			errs = append(errs, fmt.Sprintf("rasters[%d]: role %s already assigned", i, r.Role))
		}
		roles[r.Role] = true
	}
	if !roles[raster.RoleDepthToWater] {
		errs = append(errs, "a raster with role depth_to_water is required")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("study area validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Corners returns the model grid corners in the raster projection.
func (s *StudyArea) Corners() geo.Corners {
	return geo.Corners{
		Northwest: orb.Point{s.NorthwestX, s.NorthwestY},
		Northeast: orb.Point{s.NortheastX, s.NortheastY},
		Southeast: orb.Point{s.SoutheastX, s.SoutheastY},
		Southwest: orb.Point{s.SouthwestX, s.SouthwestY},
	}
}

// Raster returns the raster configured for role.
func (s *StudyArea) Raster(role raster.Role) (RasterConfig, bool) {
	for _, r := range s.Rasters {
		if r.Role == role {
			return r, true
		}
	}
	return RasterConfig{}, false
}

// Colors returns the parsed ramp endpoints. Load has already validated them.
func (s *StudyArea) Colors() (low, high geo.RGB) {
	low, err := geo.ParseHex(s.LowColor)
	if err != nil {
		low = geo.DefaultLowColor
	}
	high, err = geo.ParseHex(s.HighColor)
	if err != nil {
		high = geo.DefaultHighColor
	}
	return low, high
}

// Path resolves p relative to the config file directory.
func (s *StudyArea) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}
