// Package interp holds the pure numeric helpers the choreography engine
// interpolates with. No state, no view access.
package interp

import "math"

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpOpt interpolates between two optional endpoints. If only one side
// is defined the defined value is returned unchanged; if neither is,
// nil. This models optional slide fields that participate in
// interpolation only when both slides define them.
func LerpOpt(a, b *float64, t float64) *float64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := Lerp(*a, *b, t)
	return &v
}

// SnapToStep rounds value up to the next multiple of step measured from
// start. The ceiling is deliberate: interpolated time always advances to
// the current or next discrete tick, never regresses below it. A value
// already on a tick is returned unchanged. step <= 0 returns value as is;
// the caller's range clamp then applies.
func SnapToStep(value, start, step int64) int64 {
	if step <= 0 {
		return value
	}
	offset := value - start
	rem := offset % step
	if rem == 0 {
		return value
	}
	if rem < 0 {
		return value - rem
	}
	return value + (step - rem)
}

// Clamp01 clamps t into [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Clamp clamps v into [lo, hi].
func Clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EaseInOutCubic applies a smooth in-out easing curve. The core applies
// raw progress; adapters that want eased scrolling can run progress
// through this first.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
