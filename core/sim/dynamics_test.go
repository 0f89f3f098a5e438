package sim

import (
	"math"
	"testing"
)

func TestSmooth(t *testing.T) {
	if got := Smooth(0, 60); math.Abs(got-6) > 1e-9 {
		t.Fatalf("Smooth(0,60) = %v", got)
	}
	if got := Smooth(50, 0); math.Abs(got-45) > 1e-9 {
		t.Fatalf("Smooth(50,0) = %v", got)
	}
	if got := Smooth(100, 500); got != 100 {
		t.Fatalf("not clamped high: %v", got)
	}
	if got := Smooth(0, -50); got != 0 {
		t.Fatalf("not clamped low: %v", got)
	}
}

func TestNextTemperature(t *testing.T) {
	if got := NextTemperature(25, 40); math.Abs(got-25.005) > 1e-9 {
		t.Fatalf("heating: %v", got)
	}
	if got := NextTemperature(25, 10); math.Abs(got-24.992) > 1e-9 {
		t.Fatalf("cooling at threshold: %v", got)
	}
	if got := NextTemperature(15, 0); got != 15 {
		t.Fatalf("not clamped at floor: %v", got)
	}
	if got := NextTemperature(70, 100); got != 70 {
		t.Fatalf("not clamped at ceiling: %v", got)
	}
}

func TestDynamicsStepIntegratesDistance(t *testing.T) {
	d := Dynamics{Increment: 1.0 / 60}
	st := NewState(3600, nil)
	st.PrevSpeed = 60
	speed := d.Step(&st, 60)
	if speed != 60 {
		t.Fatalf("speed = %v", speed)
	}
	want := 60.0 / 3600 / 60
	if math.Abs(st.DistanceKm-want) > 1e-12 {
		t.Fatalf("distance = %v, want %v", st.DistanceKm, want)
	}
	if st.PrevSpeed != 60 {
		t.Fatalf("prev speed modified")
	}
}
