package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNiceRange(t *testing.T) {
	tests := []struct {
		name                  string
		min, max              float64
		wantLo, wantHi, wantI float64
	}{
		{"zero to hundred", 0, 100, -20, 120, 20},
		{"pushed both sides", 3, 47, -10, 60, 10},
		{"rounded without push", 1.9, 8.5, 0, 10, 2},
		{"negative span", -47, -3, -60, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, interval := NiceRange(tt.min, tt.max)
			assert.InDelta(t, tt.wantLo, lo, 1e-9)
			assert.InDelta(t, tt.wantHi, hi, 1e-9)
			assert.InDelta(t, tt.wantI, interval, 1e-9)
		})
	}
}

func TestNiceRangeCoversInput(t *testing.T) {
	spans := [][2]float64{{0.3, 0.9}, {12.5, 310}, {-5, 5}, {1000, 1800}}
	for _, s := range spans {
		lo, hi, interval := NiceRange(s[0], s[1])
		assert.LessOrEqual(t, lo, s[0], "span %v", s)
		assert.GreaterOrEqual(t, hi, s[1], "span %v", s)
		assert.Greater(t, interval, 0.0, "span %v", s)
	}
}
