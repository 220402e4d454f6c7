// Package geo is the coordinate and classification core of the depth-to-water
// viewer: reprojection between reference systems, study-area containment,
// map extent computation and choropleth color classes.
//
// Every function is synchronous and free of I/O. The only shared state is the
// parsed-definition cache inside a Reprojector and the color table cache.
package geo

import "errors"

var (
	// ErrInvalidInput reports non-finite or otherwise malformed numeric input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProjection reports a malformed or unsupported reference system, or a
	// transform the projection engine could not complete.
	ErrProjection = errors.New("projection error")

	// ErrDegenerateRange reports a value range whose minimum equals its maximum.
	ErrDegenerateRange = errors.New("degenerate value range")
)
