package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Corners holds the four corners of a rectangular model grid.
type Corners struct {
	Northwest orb.Point `json:"northwest"`
	Northeast orb.Point `json:"northeast"`
	Southeast orb.Point `json:"southeast"`
	Southwest orb.Point `json:"southwest"`
}

// Points returns the corners in NW, NE, SE, SW order.
func (c Corners) Points() [4]orb.Point {
	return [4]orb.Point{c.Northwest, c.Northeast, c.Southeast, c.Southwest}
}

// Bounds is an axis-aligned box in a single reference system.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Bound converts b to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}

// Extent is the result of ComputeBounds.
type Extent struct {
	Box    Bounds    `json:"bounding_box"`
	Center orb.Point `json:"center"`
	// Footprint is the closed ring NW, NE, SE, SW, NW of the individually
	// reprojected corners.
	Footprint orb.Ring `json:"footprint"`
}

// ComputeBounds reprojects the grid corners and derives the map extent.
//
// Extrema are tracked on the source coordinates. The box is the reprojection
// of (min_x, min_y) and (max_x, max_y) and the center is the reprojection of
// the source midpoint. For non-affine projections this can differ from the
// box around the reprojected corners; see ComputeBoundsStrict.
func ComputeBounds(p Projector, c Corners, from, to string) (Extent, error) {
	footprint, err := reprojectCorners(p, c, from, to)
	if err != nil {
		return Extent{}, err
	}

	src := sourceExtrema(c)

	lo, err := p.Reproject(orb.Point{src.MinX, src.MinY}, from, to)
	if err != nil {
		return Extent{}, fmt.Errorf("minimum extent: %w", err)
	}
	hi, err := p.Reproject(orb.Point{src.MaxX, src.MaxY}, from, to)
	if err != nil {
		return Extent{}, fmt.Errorf("maximum extent: %w", err)
	}
	center, err := p.Reproject(orb.Point{(src.MinX + src.MaxX) * 0.5, (src.MinY + src.MaxY) * 0.5}, from, to)
	if err != nil {
		return Extent{}, fmt.Errorf("center: %w", err)
	}

	return Extent{
		Box:       Bounds{MinX: lo[0], MinY: lo[1], MaxX: hi[0], MaxY: hi[1]},
		Center:    center,
		Footprint: footprint,
	}, nil
}

// ComputeBoundsStrict is ComputeBounds with the box taken as the min/max of
// the four reprojected corners. The center is still the reprojected source
// midpoint.
func ComputeBoundsStrict(p Projector, c Corners, from, to string) (Extent, error) {
	ext, err := ComputeBounds(p, c, from, to)
	if err != nil {
		return Extent{}, err
	}

	box := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, q := range ext.Footprint[:4] {
		box.MinX = math.Min(box.MinX, q[0])
		box.MinY = math.Min(box.MinY, q[1])
		box.MaxX = math.Max(box.MaxX, q[0])
		box.MaxY = math.Max(box.MaxY, q[1])
	}
	ext.Box = box
	return ext, nil
}

func reprojectCorners(p Projector, c Corners, from, to string) (orb.Ring, error) {
	names := [4]string{"northwest", "northeast", "southeast", "southwest"}
	ring := make(orb.Ring, 0, 5)
	for i, corner := range c.Points() {
		q, err := p.Reproject(corner, from, to)
		if err != nil {
			return nil, fmt.Errorf("%s corner: %w", names[i], err)
		}
		ring = append(ring, q)
	}
	return append(ring, ring[0]), nil
}

func sourceExtrema(c Corners) Bounds {
	pts := c.Points()
	b := Bounds{MinX: pts[0][0], MinY: pts[0][1], MaxX: pts[0][0], MaxY: pts[0][1]}
	for _, q := range pts[1:] {
		if q[0] > b.MaxX {
			b.MaxX = q[0]
		}
		if q[0] < b.MinX {
			b.MinX = q[0]
		}
		if q[1] > b.MaxY {
			b.MaxY = q[1]
		}
		if q[1] < b.MinY {
			b.MinY = q[1]
		}
	}
	return b
}
