package properties

import (
	"math"
	"testing"
)

func TestRMSRadiusUnitDistancePoints(t *testing.T) {
	pos := [][3]float64{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}}
	vel := make([][3]float64, len(pos))
	p := Compute(pos, vel, 1e10, 4.30091e-9)
	if math.Abs(p.RMSRadius-1) > 1e-9 {
		t.Errorf("RMSRadius = %v, want 1", p.RMSRadius)
	}
}

func TestHalfMassRadiusTenParticles(t *testing.T) {
	pos := make([][3]float64, 10)
	for i := range pos {
		pos[i] = [3]float64{float64(i + 1), 0, 0}
	}
	vel := make([][3]float64, 10)
	p := Compute(pos, vel, 1e10, 4.30091e-9)
	// Sorted radii are 1..10; half = 5 -> radius 5.
	if p.HalfMassRadius != 5 {
		t.Errorf("HalfMassRadius = %v, want 5", p.HalfMassRadius)
	}
}

func TestDispersionZeroForStationaryHalo(t *testing.T) {
	pos := make([][3]float64, 5)
	vel := make([][3]float64, 5)
	p := Compute(pos, vel, 1e10, 4.30091e-9)
	if p.Dispersion3D != 0 {
		t.Errorf("Dispersion3D = %v, want 0 for stationary halo", p.Dispersion3D)
	}
	for axis, d := range p.Dispersion1D {
		if d != 0 {
			t.Errorf("Dispersion1D[%d] = %v, want 0", axis, d)
		}
	}
}

func TestVMaxPositiveForNonZeroRadii(t *testing.T) {
	radii := []float64{1, 2, 3, 4, 5}
	v := vMax(radii, 1e12, 4.30091e-9)
	if v <= 0 {
		t.Errorf("VMax = %v, want > 0", v)
	}
}

func TestComputeEmpty(t *testing.T) {
	p := Compute(nil, nil, 1e10, 4.30091e-9)
	if p != (Properties{}) {
		t.Errorf("expected zero Properties for empty input, got %+v", p)
	}
}
