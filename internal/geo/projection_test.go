package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	utm10N        = "+proj=utm +zone=10 +datum=WGS84 +units=m +no_defs"
	oregonLambert = "+proj=lcc +lat_1=46 +lat_2=44.33333333333334 +lat_0=43.66666666666666 +lon_0=-120.5 +x_0=2500000.0001424 +y_0=0 +ellps=GRS80 +to_meter=0.3048 +no_defs"
)

// Points inside the Portland basin study area.
var portlandPoints = []orb.Point{
	{-122.77619933243842, 45.5750234451687},
	{-122.6765, 45.5231},
	{-122.4194, 45.4312},
	{-123.0012, 45.7104},
}

func TestReprojectRoundTrip(t *testing.T) {
	r := NewReprojector()

	targets := []string{utm10N, oregonLambert, "EPSG:3857", "EPSG:26910"}
	for _, target := range targets {
		for _, p := range portlandPoints {
			q, err := r.Reproject(p, LongLatWGS84, target)
			require.NoError(t, err, "forward %s", target)

			back, err := r.Reproject(q, target, LongLatWGS84)
			require.NoError(t, err, "inverse %s", target)

			assert.InEpsilon(t, p[0], back[0], 1e-6, "lon round trip via %s", target)
			assert.InEpsilon(t, p[1], back[1], 1e-6, "lat round trip via %s", target)
		}
	}
}

func TestReprojectKnownUTM(t *testing.T) {
	p := orb.Point{-122.77619933243842, 45.5750234451687}

	q, err := Reproject(p, "EPSG:4326", "EPSG:32610")
	require.NoError(t, err)

	assert.InDelta(t, 517461.593, q[0], 1.0)
	assert.InDelta(t, 5046855.801, q[1], 1.0)
}

func TestReprojectIdentity(t *testing.T) {
	p := orb.Point{3.5, -7.25}

	q, err := Reproject(p, LongLatWGS84, "  +proj=longlat   +datum=WGS84 +no_defs ")
	require.NoError(t, err)
	assert.Equal(t, p, q)

	q, err = Reproject(p, "EPSG:4326", LongLatWGS84)
	require.NoError(t, err)
	assert.Equal(t, p, q)
}

func TestReprojectErrors(t *testing.T) {
	r := NewReprojector()

	tests := []struct {
		name     string
		p        orb.Point
		from, to string
		want     error
	}{
		{"NaN x", orb.Point{math.NaN(), 45}, LongLatWGS84, utm10N, ErrInvalidInput},
		{"Inf y", orb.Point{-122, math.Inf(1)}, LongLatWGS84, utm10N, ErrInvalidInput},
		{"empty source", orb.Point{-122, 45}, "", utm10N, ErrProjection},
		{"garbage target", orb.Point{-122, 45}, LongLatWGS84, "not a projection", ErrProjection},
		{"unknown EPSG", orb.Point{-122, 45}, "EPSG:99999", LongLatWGS84, ErrProjection},
		{"unsupported engine projection", orb.Point{-122, 45}, LongLatWGS84, "+proj=bogus +datum=WGS84", ErrProjection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Reproject(tt.p, tt.from, tt.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReprojectorCachesDefinitions(t *testing.T) {
	r := NewReprojector()

	for i := 0; i < 3; i++ {
		_, err := r.Reproject(portlandPoints[0], LongLatWGS84, utm10N)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, r.srs.ItemCount())
	assert.Equal(t, 1, r.transforms.ItemCount())
}

func TestReprojectRing(t *testing.T) {
	r := NewReprojector()
	ring := orb.Ring{portlandPoints[0], portlandPoints[1], portlandPoints[2], portlandPoints[0]}

	out, err := r.ReprojectRing(ring, LongLatWGS84, utm10N)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, out[0], out[3])

	ring[1] = orb.Point{math.NaN(), 0}
	_, err = r.ReprojectRing(ring, LongLatWGS84, utm10N)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EPSG:4326", LongLatWGS84},
		{"epsg:4326", LongLatWGS84},
		{"WGS84", LongLatWGS84},
		{"EPSG:4269", LongLatNAD83},
		{"EPSG:3857", WebMercator},
		{"EPSG:32610", UTMDefinition(10, false)},
		{"EPSG:32755", UTMDefinition(55, true)},
		{"EPSG:26910", "+proj=utm +zone=10 +datum=NAD83 +units=m +no_defs"},
		{" +proj=longlat\t+datum=WGS84 ", "+proj=longlat +datum=WGS84"},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Resolve("EPSG:32661")
	assert.ErrorIs(t, err, ErrProjection)
}

func TestValidate(t *testing.T) {
	r := NewReprojector()
	assert.NoError(t, r.Validate(oregonLambert))
	assert.ErrorIs(t, r.Validate("nonsense"), ErrProjection)
}
