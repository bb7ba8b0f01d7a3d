// Package linking derives the spatial and velocity linking lengths
// used throughout the finder from a snapshot's scalar parameters and
// the run configuration. Nothing here is mutable process-wide state
// (spec.md §9, "mutable globals") — every derived value is carried on
// the Lengths struct and threaded explicitly into the components that
// need it.
package linking

import (
	"math"

	"github.com/sarat-asymmetrica/haloforge/internal/config"
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
)

// Lengths holds the linking lengths and velocity-coefficient bounds
// derived once per snapshot+config pair.
type Lengths struct {
	// Host spatial linking length, b = c_h * Δ.
	Host float64
	// Subhalo spatial linking length, b_sub = c_s * Δ.
	Sub float64
	// Base velocity linking length v0, independent of halo mass.
	V0 float64
	// Initial and floor velocity coefficients.
	AlphaInit float64
	AlphaMin  float64
	// Decrement applied to alpha at each refinement iteration.
	Decrement float64
}

// subOverdensityRatio is (1600/200)^(1/6), the overdensity-ratio
// scaling applied to the base velocity coefficient when refining
// subhalos instead of host halos (spec.md §4.6, subhalo variant).
const subOverdensityRatio = 1.4142135623730951 // (1600.0/200.0)^(1.0/6.0) = 8^(1/6) = sqrt(2)

// Derive computes Lengths from a snapshot's scalar parameters and the
// run configuration.
func Derive(snap *particle.Snapshot, cfg config.Config) Lengths {
	meanSep := snap.MeanSep()
	meanDen := snap.MeanDensity()

	v0 := math.Sqrt(snap.G/2) * math.Pow(4*math.Pi*200*meanDen/3, 1.0/6.0) * math.Sqrt(1+snap.Redshift)

	return Lengths{
		Host:      cfg.LLCoeff * meanSep,
		Sub:       cfg.SubLLCoeff * meanSep,
		V0:        v0,
		AlphaInit: cfg.IniAlphaV,
		AlphaMin:  cfg.MinAlphaV,
		Decrement: cfg.Decrement,
	}
}

// SubV0 returns the base velocity linking length scaled for subhalo
// refinement (overdensity 1600 vs the host's 200).
func (l Lengths) SubV0() float64 {
	return l.V0 * subOverdensityRatio
}

// VelocityLinkingLength returns v_L = alpha * v0 * m_p^(1/3) * n^(1/3)
// (spec.md §4.6 step 4), for the given base v0 (host or sub), particle
// mass and candidate halo particle count.
func VelocityLinkingLength(v0, alpha, partMass float64, npart int) float64 {
	return alpha * v0 * math.Cbrt(partMass) * math.Cbrt(float64(npart))
}
