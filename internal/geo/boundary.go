package geo

import "github.com/paulmach/orb"

// IsInside reports whether p lies inside ring using even-odd ray casting.
// The ring is treated as closed whether or not the last vertex repeats the
// first. Rings with fewer than three vertices contain nothing. Points on an
// edge or vertex may land on either side.
func IsInside(ring orb.Ring, p orb.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if ((yi <= p[1] && p[1] < yj) || (yj <= p[1] && p[1] < yi)) &&
			p[0] < (xj-xi)*(p[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Boundary is a study-area outline made of one or more polygons.
type Boundary struct {
	polygons orb.MultiPolygon
}

// NewBoundary builds a Boundary from a polygonal geometry. Non-polygonal
// geometries yield an empty boundary that contains nothing.
func NewBoundary(g orb.Geometry) Boundary {
	switch g := g.(type) {
	case orb.Polygon:
		return Boundary{polygons: orb.MultiPolygon{g}}
	case orb.MultiPolygon:
		return Boundary{polygons: g}
	case orb.Ring:
		return Boundary{polygons: orb.MultiPolygon{{g}}}
	case orb.Collection:
		var b Boundary
		for _, sub := range g {
			b.polygons = append(b.polygons, NewBoundary(sub).polygons...)
		}
		return b
	}
	return Boundary{}
}

// Contains reports whether p is inside any polygon's outer ring and outside
// that polygon's holes.
func (b Boundary) Contains(p orb.Point) bool {
	for _, poly := range b.polygons {
		if len(poly) == 0 || !IsInside(poly[0], p) {
			continue
		}
		inHole := false
		for _, hole := range poly[1:] {
			if IsInside(hole, p) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Empty reports whether the boundary has no polygons.
func (b Boundary) Empty() bool { return len(b.polygons) == 0 }

// Geometry returns the boundary polygons.
func (b Boundary) Geometry() orb.MultiPolygon { return b.polygons }

// Bound returns the envelope of the boundary.
func (b Boundary) Bound() orb.Bound { return b.polygons.Bound() }
