package geo

import (
	"fmt"
	"math"
)

// DMS is an angle split into degrees, minutes and seconds with a hemisphere
// letter.
type DMS struct {
	Degrees    int     `json:"degrees"`
	Minutes    int     `json:"minutes"`
	Seconds    float64 `json:"seconds"`
	Hemisphere string  `json:"hemisphere"`
}

// String formats d as DD° MM' SS.sss" H.
func (d DMS) String() string {
	return fmt.Sprintf("%d° %d' %.3f\" %s", d.Degrees, d.Minutes, d.Seconds, d.Hemisphere)
}

func toDMS(v float64, positive, negative string) DMS {
	h := negative
	if v > 0 {
		h = positive
	}
	a := math.Abs(v)
	deg := math.Floor(a)
	min := math.Floor(60 * (a - deg))
	sec := 60 * (60*(a-deg) - min)
	return DMS{Degrees: int(deg), Minutes: int(min), Seconds: sec, Hemisphere: h}
}

// LongitudeDMS converts a longitude in decimal degrees. Zero is reported as W.
func LongitudeDMS(lon float64) DMS { return toDMS(lon, "E", "W") }

// LatitudeDMS converts a latitude in decimal degrees.
func LatitudeDMS(lat float64) DMS {
	d := toDMS(lat, "N", "S")
	if lat == 0 {
		d.Hemisphere = "N"
	}
	return d
}

// UTMZone returns the 6° UTM zone (1-60) containing lon.
func UTMZone(lon float64) int {
	zone := int(1 + (lon+180.0)/6.0)
	if zone < 1 {
		return 1
	}
	if zone > 60 {
		return 60
	}
	return zone
}

// UTMDefinition returns the WGS84 UTM definition for zone.
func UTMDefinition(zone int, south bool) string {
	if south {
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", zone)
	}
	return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone)
}
