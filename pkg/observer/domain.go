package observer

import "math"

// Domain describes the legal values of a subject.
type Domain struct {
	Min     float64
	Max     float64
	Toggled bool
	Integer bool
}

// DefaultDomain is the [0, 1] continuous range subjects start with.
var DefaultDomain = Domain{Min: 0, Max: 1}

// Curve maps raw values onto a subject's legal values. When a subject has
// a curve attached, conformance is delegated to it entirely.
// Conform must be pure and idempotent.
type Curve interface {
	Conform(value float64) float64
}

// Scaler is implemented by curves that map values to a normalized [0, 1]
// control position with something other than a linear scale.
type Scaler interface {
	ScaleFromValue(value float64) float64
	ValueFromScale(scale float64) float64
}

// Conform maps value onto the domain. Toggled domains map to exactly 0 or
// 1 and integer domains round to the nearest whole number; the result is
// then clamped to [Min, Max]. NaN is treated as Min. Conform is idempotent.
//
// When a bound cuts between the candidates (a toggled range without 1, a
// fractional integer bound) the input is pulled into range first, so the
// clamped result is itself a fixed point.
func (d Domain) Conform(value float64) float64 {
	lo, hi := d.bounds()
	if math.IsNaN(value) {
		value = lo
	}

	switch {
	case d.Toggled:
		off, on := clamp(0, lo, hi), clamp(1, lo, hi)
		if value > off+0.5*(on-off) {
			return on
		}
		return off
	case d.Integer:
		return clamp(math.Round(clamp(value, lo, hi)), lo, hi)
	}

	return clamp(value, lo, hi)
}

// Scale maps value to its linear position in [0, 1] within the domain.
func (d Domain) Scale(value float64) float64 {
	lo, hi := d.bounds()
	if hi <= lo {
		return 0
	}
	return clamp((value-lo)/(hi-lo), 0, 1)
}

// Unscale maps a linear [0, 1] position back into the domain, unconformed.
func (d Domain) Unscale(scale float64) float64 {
	lo, hi := d.bounds()
	return lo + clamp(scale, 0, 1)*(hi-lo)
}

func (d Domain) bounds() (float64, float64) {
	if d.Max < d.Min {
		return d.Max, d.Min
	}
	return d.Min, d.Max
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
