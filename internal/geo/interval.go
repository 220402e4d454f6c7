package geo

import "math"

// NiceRange widens [min, max] to round legend limits. The interval is the
// first of 1, 2, 2.5, 5 or 10 times a power of ten that covers a fifth of the
// span, starting at 0.01 (2.5 only applies from a factor of 10 up). Each limit
// is rounded outward to the interval and pushed one more interval out when it
// lies within 0.67 of an interval of the raw value.
func NiceRange(min, max float64) (lo, hi, interval float64) {
	const shift = 0.67

	factor := 0.01
	interval = factor
	delta := (max - min) / 5.0

	for delta > factor {
		switch {
		case delta <= factor*2:
			interval = factor * 2
		case delta <= factor*2.5:
			if factor < 10.0 {
				interval = factor * 2
			} else {
				interval = factor * 2.5
			}
		case delta <= factor*5:
			interval = factor * 5
		default:
			interval = factor * 10
		}
		factor *= 10
	}

	f := math.Trunc(max / interval)
	value := f * interval
	if max > value {
		value = (f + 1) * interval
	}
	if math.Abs(max-value) <= shift*interval {
		hi = value + interval
	} else {
		hi = value
	}

	f = math.Trunc(min / interval)
	value = f * interval
	if min < value {
		value = (f - 1) * interval
	}
	if math.Abs(min-value) <= shift*interval {
		lo = value - interval
	} else {
		lo = value
	}

	return lo, hi, interval
}
