package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/patrickmn/go-cache"
	"github.com/paulmach/orb"
)

// Common reference-system definitions.
const (
	// LongLatWGS84 is geographic longitude/latitude on the WGS84 datum.
	LongLatWGS84 = "+proj=longlat +datum=WGS84 +no_defs"
	// LongLatNAD83 is geographic longitude/latitude on the NAD83 datum.
	LongLatNAD83 = "+proj=longlat +datum=NAD83 +no_defs"
	// WebMercator is the spherical Mercator used by web basemaps.
	WebMercator = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"
)

// Projector converts a coordinate from one reference system to another.
type Projector interface {
	Reproject(p orb.Point, from, to string) (orb.Point, error)
}

// Reprojector converts coordinates between reference systems given as PROJ.4
// strings or EPSG aliases. Parsed definitions and transforms are cached, so a
// single Reprojector should be shared. It is safe for concurrent use.
type Reprojector struct {
	srs        *cache.Cache
	transforms *cache.Cache
}

// NewReprojector creates a Reprojector with empty caches.
func NewReprojector() *Reprojector {
	return &Reprojector{
		srs:        cache.New(cache.NoExpiration, 0),
		transforms: cache.New(cache.NoExpiration, 0),
	}
}

var defaultReprojector = NewReprojector()

// Reproject converts p from one reference system to another using a shared
// package-level Reprojector.
func Reproject(p orb.Point, from, to string) (orb.Point, error) {
	return defaultReprojector.Reproject(p, from, to)
}

// Reproject converts p from the from system to the to system.
// Identical systems return p unchanged.
func (r *Reprojector) Reproject(p orb.Point, from, to string) (orb.Point, error) {
	if !finitePoint(p) {
		return orb.Point{}, fmt.Errorf("%w: coordinate (%v, %v) is not finite", ErrInvalidInput, p[0], p[1])
	}

	src, err := Resolve(from)
	if err != nil {
		return orb.Point{}, err
	}
	dst, err := Resolve(to)
	if err != nil {
		return orb.Point{}, err
	}
	if src == dst {
		return p, nil
	}

	t, err := r.transform(src, dst)
	if err != nil {
		return orb.Point{}, err
	}

	x, y, err := t(p[0], p[1])
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: transforming (%v, %v): %v", ErrProjection, p[0], p[1], err)
	}
	out := orb.Point{x, y}
	if !finitePoint(out) {
		return orb.Point{}, fmt.Errorf("%w: (%v, %v) has no finite image in the target system", ErrProjection, p[0], p[1])
	}
	return out, nil
}

// ReprojectRing converts every vertex of ring. It fails on the first vertex
// that cannot be converted.
func (r *Reprojector) ReprojectRing(ring orb.Ring, from, to string) (orb.Ring, error) {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		q, err := r.Reproject(p, from, to)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		out[i] = q
	}
	return out, nil
}

// Validate reports whether def can be parsed by the projection engine.
func (r *Reprojector) Validate(def string) error {
	resolved, err := Resolve(def)
	if err != nil {
		return err
	}
	_, err = r.sr(resolved)
	return err
}

func (r *Reprojector) transform(src, dst string) (proj.Transformer, error) {
	key := src + "\x00" + dst
	if t, ok := r.transforms.Get(key); ok {
		return t.(proj.Transformer), nil
	}

	srcSR, err := r.sr(src)
	if err != nil {
		return nil, err
	}
	dstSR, err := r.sr(dst)
	if err != nil {
		return nil, err
	}

	t, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, fmt.Errorf("%w: building transform %q -> %q: %v", ErrProjection, src, dst, err)
	}
	r.transforms.SetDefault(key, t)
	return t, nil
}

func (r *Reprojector) sr(def string) (*proj.SR, error) {
	if sr, ok := r.srs.Get(def); ok {
		return sr.(*proj.SR), nil
	}
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrProjection, def, err)
	}
	r.srs.SetDefault(def, sr)
	return sr, nil
}

// Resolve normalises a reference-system identifier to a PROJ.4 string.
// EPSG aliases for WGS84/NAD83 geographic, Web Mercator and UTM zones
// (EPSG:326zz, EPSG:327zz, EPSG:269zz) are expanded.
func Resolve(def string) (string, error) {
	def = strings.Join(strings.Fields(def), " ")
	if def == "" {
		return "", fmt.Errorf("%w: empty reference system", ErrProjection)
	}
	if strings.Contains(def, "+proj=") {
		return def, nil
	}

	code, ok := epsgCode(def)
	if !ok {
		return "", fmt.Errorf("%w: unrecognised reference system %q", ErrProjection, def)
	}
	switch {
	case code == 4326:
		return LongLatWGS84, nil
	case code == 4269:
		return LongLatNAD83, nil
	case code == 3857 || code == 900913:
		return WebMercator, nil
	case code > 32600 && code <= 32660:
		return UTMDefinition(code-32600, false), nil
	case code > 32700 && code <= 32760:
		return UTMDefinition(code-32700, true), nil
	case code > 26900 && code <= 26923:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=NAD83 +units=m +no_defs", code-26900), nil
	}
	return "", fmt.Errorf("%w: unsupported EPSG code %d", ErrProjection, code)
}

func epsgCode(def string) (int, bool) {
	upper := strings.ToUpper(def)
	if upper == "WGS84" {
		return 4326, true
	}
	if !strings.HasPrefix(upper, "EPSG:") {
		return 0, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(upper[len("EPSG:"):]))
	if err != nil {
		return 0, false
	}
	return code, true
}

func finitePoint(p orb.Point) bool {
	return finite(p[0]) && finite(p[1])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports whether def can be parsed, using the shared Reprojector.
func Validate(def string) error {
	return defaultReprojector.Validate(def)
}
