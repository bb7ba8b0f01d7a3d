package energy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/sarat-asymmetrica/haloforge/internal/particle"
)

func testSnapshot() *particle.Snapshot {
	return &particle.Snapshot{
		N:         100,
		BoxSize:   100,
		Redshift:  0,
		PartMass:  1e10,
		H:         0.7,
		Softening: 0.01,
		G:         1.3271244e11,
	}
}

func TestModeForThreshold(t *testing.T) {
	if ModeFor(9999) != Exact {
		t.Errorf("9999 particles should use Exact")
	}
	if ModeFor(10000) != Approx {
		t.Errorf("10000 particles should use Approx")
	}
}

func TestExactAndApproxAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 50
	pos := make([][3]float64, n)
	vel := make([][3]float64, n)
	for i := range pos {
		pos[i] = [3]float64{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		vel[i] = [3]float64{rng.Float64()*100 - 50, rng.Float64()*100 - 50, rng.Float64()*100 - 50}
	}
	snap := testSnapshot()

	_, _, geExact := Compute(pos, vel, snap, Exact)
	_, _, geApprox := Compute(pos, vel, snap, Approx)

	if math.Abs(geExact-geApprox) > 1e-6*math.Abs(geExact) {
		t.Fatalf("exact GE = %v, approx GE = %v, disagree beyond rounding", geExact, geApprox)
	}
}

func TestDegenerateEnergySingleParticle(t *testing.T) {
	snap := testSnapshot()
	pos := [][3]float64{{0, 0, 0}}
	vel := [][3]float64{{1, 2, 3}}
	total, ke, ge := Compute(pos, vel, snap, Exact)
	if ge != 0 {
		t.Errorf("GE should be 0 for a single particle, got %v", ge)
	}
	if total != ke {
		t.Errorf("total should equal KE when GE is degenerate, got total=%v ke=%v", total, ke)
	}
}

func TestBoundSpherePlacesEnergyNegative(t *testing.T) {
	// A tight, slow-moving cluster should be bound: KE small, GE large.
	rng := rand.New(rand.NewSource(7))
	n := 200
	pos := make([][3]float64, n)
	vel := make([][3]float64, n)
	for i := range pos {
		pos[i] = [3]float64{rng.NormFloat64() * 0.01, rng.NormFloat64() * 0.01, rng.NormFloat64() * 0.01}
		vel[i] = [3]float64{rng.NormFloat64() * 0.1, rng.NormFloat64() * 0.1, rng.NormFloat64() * 0.1}
	}
	snap := testSnapshot()
	snap.PartMass = 1e12
	total, ke, ge := Compute(pos, vel, snap, Exact)
	if ge <= ke {
		t.Fatalf("expected a tight, slow cluster to be bound (GE > KE) under the default G, got GE=%v KE=%v", ge, ke)
	}
	if total > 0 {
		t.Errorf("expected bound cluster to have total energy <= 0, got %v", total)
	}
}
