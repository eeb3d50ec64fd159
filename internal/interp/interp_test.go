package interp

import (
	"math"
	"testing"
)

func TestLerpEndpoints(t *testing.T) {
	if got := Lerp(10, 20, 0); got != 10 {
		t.Errorf("Lerp at t=0: expected 10, got %f", got)
	}
	if got := Lerp(10, 20, 1); got != 20 {
		t.Errorf("Lerp at t=1: expected 20, got %f", got)
	}
	if got := Lerp(10, 20, 0.5); got != 15 {
		t.Errorf("Lerp at t=0.5: expected 15, got %f", got)
	}
}

func TestLerpMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for i := 0; i <= 100; i++ {
		tt := float64(i) / 100
		v := Lerp(-5, 5, tt)
		if v < prev {
			t.Fatalf("Lerp not monotonic at t=%f: %f < %f", tt, v, prev)
		}
		prev = v
	}
}

func TestLerpOpt(t *testing.T) {
	a, b := 10.0, 20.0

	if got := LerpOpt(nil, nil, 0.5); got != nil {
		t.Errorf("expected nil for two absent endpoints, got %f", *got)
	}
	if got := LerpOpt(&a, nil, 0.9); got == nil || *got != a {
		t.Errorf("expected defined side %f, got %v", a, got)
	}
	if got := LerpOpt(nil, &b, 0.1); got == nil || *got != b {
		t.Errorf("expected defined side %f, got %v", b, got)
	}
	if got := LerpOpt(&a, &b, 0.5); got == nil || *got != 15 {
		t.Errorf("expected 15, got %v", got)
	}
}

func TestSnapToStepCeiling(t *testing.T) {
	if got := SnapToStep(1500, 0, 1000); got != 2000 {
		t.Errorf("expected 2000, got %d", got)
	}
	// Exact multiples stay put.
	if got := SnapToStep(2000, 0, 1000); got != 2000 {
		t.Errorf("expected 2000 on exact boundary, got %d", got)
	}
	// Offset measured from a non-zero start.
	if got := SnapToStep(1700, 200, 1000); got != 2200 {
		t.Errorf("expected 2200, got %d", got)
	}
}

func TestSnapToStepDegradedStep(t *testing.T) {
	if got := SnapToStep(1234, 0, 0); got != 1234 {
		t.Errorf("expected passthrough for step=0, got %d", got)
	}
	if got := SnapToStep(1234, 0, -5); got != 1234 {
		t.Errorf("expected passthrough for negative step, got %d", got)
	}
}

func TestClamp01(t *testing.T) {
	if got := Clamp01(-0.3); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := Clamp01(1.7); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	if got := Clamp01(0.42); got != 0.42 {
		t.Errorf("expected 0.42, got %f", got)
	}
}

func TestEaseInOutCubicEndpoints(t *testing.T) {
	if got := EaseInOutCubic(0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := EaseInOutCubic(1); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	if got := EaseInOutCubic(0.5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected 0.5 at midpoint, got %f", got)
	}
}
