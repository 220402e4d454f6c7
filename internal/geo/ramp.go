package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Defaults used by the depth-to-water cell fill.
const (
	DefaultClassCount = 30
)

var (
	DefaultLowColor  = RGB{R: 0, G: 0, B: 224}
	DefaultHighColor = RGB{R: 204, G: 204, B: 255}
)

// RGB is an 8-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb or the #rgb shorthand. The leading # is optional.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: color %q is not in #RRGGBB format", ErrInvalidInput, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: color %q: %v", ErrInvalidInput, s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ValueRange is the observed or supplied span of a measured quantity.
type ValueRange struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

// ColorTable maps a color class to its color.
type ColorTable []RGB

// Color returns the color of class, clamping out-of-range classes to the
// nearest end of the table.
func (t ColorTable) Color(class int) RGB {
	if len(t) == 0 {
		return RGB{}
	}
	if class < 0 {
		class = 0
	}
	if class >= len(t) {
		class = len(t) - 1
	}
	return t[class]
}

// BuildRamp interpolates each channel linearly from low to high across n
// classes. Channel values are truncated and clamped between the endpoints,
// whichever direction the channel runs. Class 0 is low and class n-1 is high.
func BuildRamp(n int, low, high RGB) ColorTable {
	if n < 1 {
		return nil
	}
	steps := float64(n - 1)
	if steps == 0 {
		steps = 1
	}
	table := make(ColorTable, n)
	for i := range table {
		table[i] = RGB{
			R: rampChannel(low.R, high.R, i, steps),
			G: rampChannel(low.G, high.G, i, steps),
			B: rampChannel(low.B, high.B, i, steps),
		}
	}
	return table
}

func rampChannel(lo, hi uint8, i int, steps float64) uint8 {
	a, b := float64(lo), float64(hi)
	v := math.Trunc(a + float64(i)*(b-a)/steps)
	v = math.Max(v, math.Min(a, b))
	v = math.Min(v, math.Max(a, b))
	return uint8(v)
}

// Classify buckets value into one of n classes over r:
// floor(n*(value-min)/|max-min|), clamped to [0, n-1].
// Classify is non-decreasing in value for a fixed range and n.
func Classify(value float64, r ValueRange, n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: class count %d", ErrInvalidInput, n)
	}
	if !finite(value) || !finite(r.Minimum) || !finite(r.Maximum) {
		return 0, fmt.Errorf("%w: value %v in range [%v, %v]", ErrInvalidInput, value, r.Minimum, r.Maximum)
	}
	if r.Maximum == r.Minimum {
		return 0, fmt.Errorf("%w: minimum and maximum are both %v", ErrDegenerateRange, r.Minimum)
	}

	class := math.Floor(float64(n) * (value - r.Minimum) / math.Abs(r.Maximum-r.Minimum))
	if class >= float64(n) {
		return n - 1, nil
	}
	if class <= 0 {
		return 0, nil
	}
	return int(class), nil
}

// rampCache holds the process-wide table. It is rebuilt only when the
// requested class count or endpoints change.
var rampCache struct {
	mu        sync.RWMutex
	n         int
	low, high RGB
	table     ColorTable
}

// Ramp returns the shared color table for n classes between low and high.
// Callers must not modify the returned table.
func Ramp(n int, low, high RGB) ColorTable {
	rampCache.mu.RLock()
	if rampCache.table != nil && rampCache.n == n && rampCache.low == low && rampCache.high == high {
		t := rampCache.table
		rampCache.mu.RUnlock()
		return t
	}
	rampCache.mu.RUnlock()

	rampCache.mu.Lock()
	defer rampCache.mu.Unlock()
	if rampCache.table == nil || rampCache.n != n || rampCache.low != low || rampCache.high != high {
		rampCache.n, rampCache.low, rampCache.high = n, low, high
		rampCache.table = BuildRamp(n, low, high)
	}
	return rampCache.table
}
