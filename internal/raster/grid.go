// Package raster reads gridded model output and answers cell lookups.
package raster

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-dtw/internal/geo"
)

// Role identifies what a raster layer measures.
type Role string

const (
	RoleLandSurface    Role = "land_surface"
	RoleDepthToWater   Role = "depth_to_water"
	RoleWaterElevation Role = "water_elevation"
	RoleUncertainty    Role = "uncertainty"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleLandSurface, RoleDepthToWater, RoleWaterElevation, RoleUncertainty:
		return true
	}
	return false
}

// Header describes the geometry of a grid. Rows are counted from the north
// edge, columns from the west edge.
type Header struct {
	Cols      int     `json:"ncols"`
	Rows      int     `json:"nrows"`
	XLLCorner float64 `json:"xllcorner"`
	YLLCorner float64 `json:"yllcorner"`
	CellSize  float64 `json:"cellsize"`
	NoData    float64 `json:"nodata_value"`
	HasNoData bool    `json:"has_nodata"`
}

// Origin returns the upper-left corner of the grid.
func (h Header) Origin() orb.Point {
	return orb.Point{h.XLLCorner, h.YLLCorner + float64(h.Rows)*h.CellSize}
}

// RowCol returns the cell containing p. ok is false when p lies outside the
// grid.
func (h Header) RowCol(p orb.Point) (row, col int, ok bool) {
	if h.CellSize <= 0 {
		return 0, 0, false
	}
	o := h.Origin()
	c := math.Floor((p[0] - o[0]) / h.CellSize)
	r := math.Floor((o[1] - p[1]) / h.CellSize)
	if math.IsNaN(c) || math.IsNaN(r) || c < 0 || r < 0 || c >= float64(h.Cols) || r >= float64(h.Rows) {
		return 0, 0, false
	}
	return int(r), int(c), true
}

// Cell returns the corners of a cell as UL, UR, LR, LL.
func (h Header) Cell(row, col int) [4]orb.Point {
	o := h.Origin()
	x0 := o[0] + float64(col)*h.CellSize
	y0 := o[1] - float64(row)*h.CellSize
	x1 := x0 + h.CellSize
	y1 := y0 - h.CellSize
	return [4]orb.Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// Bounds returns the extent of the grid.
func (h Header) Bounds() geo.Bounds {
	return geo.Bounds{
		MinX: h.XLLCorner,
		MinY: h.YLLCorner,
		MaxX: h.XLLCorner + float64(h.Cols)*h.CellSize,
		MaxY: h.YLLCorner + float64(h.Rows)*h.CellSize,
	}
}

// IsNoData reports whether v is the grid's missing-value marker.
func (h Header) IsNoData(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return h.HasNoData && v == h.NoData
}

// Grid is a header plus row-major cell values.
type Grid struct {
	Header
	Values []float64
}

// At returns the value at row, col. ok is false outside the grid or for
// nodata cells.
func (g *Grid) At(row, col int) (float64, bool) {
	if row < 0 || col < 0 || row >= g.Rows || col >= g.Cols {
		return 0, false
	}
	v := g.Values[row*g.Cols+col]
	if g.IsNoData(v) {
		return 0, false
	}
	return v, true
}

// Stats summarises the valid cells of a layer.
type Stats struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Count   int     `json:"count"`
}

// Range returns the minimum and maximum as a geo.ValueRange.
func (s Stats) Range() geo.ValueRange {
	return geo.ValueRange{Minimum: s.Minimum, Maximum: s.Maximum}
}

// ComputeStats summarises the valid cells of g. A grid without valid cells
// yields a zero Stats.
func ComputeStats(g *Grid) Stats {
	valid := make([]float64, 0, len(g.Values))
	sum := 0.0
	for _, v := range g.Values {
		if g.IsNoData(v) {
			continue
		}
		valid = append(valid, v)
		sum += v
	}
	if len(valid) == 0 {
		return Stats{}
	}

	sort.Float64s(valid)
	n := len(valid)
	median := valid[n/2]
	if n%2 == 0 {
		median = (valid[n/2-1] + valid[n/2]) / 2
	}
	return Stats{
		Minimum: valid[0],
		Maximum: valid[n-1],
		Mean:    sum / float64(n),
		Median:  median,
		Count:   n,
	}
}
