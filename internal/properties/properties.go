// Package properties computes the derived halo observables spec.md
// §4.5 (component C5) describes: RMS radius/velocity, 1-D and 3-D
// velocity dispersion, v_max, and half-mass radius. All functions are
// pure and operate on already-centred position/velocity slices
// (spec.md §4.3's WrapHalo output), with no dependency on the
// spatial or energy packages.
//
// Grounded on the original source's property block inside
// `get_real_host_halos`/`get_real_sub_halos`
// (original_source/core/kdhalofinder_mpi.py) and on
// `halo_energy_calc_approx`'s sorted-radii v_max sum
// (original_source/core/utilities.py), using
// gonum.org/v1/gonum/stat.Variance for the dispersion terms.
package properties

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Properties holds the derived observables for a single halo or
// subhalo, computed from its centred member positions and velocities.
type Properties struct {
	RMSRadius         float64
	RMSVelocityRadius float64
	Dispersion1D      [3]float64
	Dispersion3D      float64
	VMax              float64
	HalfMassRadius    float64
	HalfMassVelRadius float64
}

// Compute derives Properties from centred positions (pos) and
// velocities (vel), plus the particle mass and gravitational constant
// needed for v_max (spec.md §4.5's v_k = sqrt(G*k*m_p/r_k) sweep).
func Compute(pos, vel [][3]float64, partMass, g float64) Properties {
	n := len(pos)
	if n == 0 {
		return Properties{}
	}

	radii := radialNorms(pos)
	velRadii := radialNorms(vel)

	var p Properties
	p.RMSRadius = rms(radii)
	p.RMSVelocityRadius = rms(velRadii)
	p.Dispersion1D, p.Dispersion3D = dispersion(vel)
	p.VMax = vMax(radii, partMass, g)
	p.HalfMassRadius = halfMassRadius(radii)
	p.HalfMassVelRadius = halfMassRadius(velRadii)
	return p
}

// radialNorms returns the Euclidean norm of each centred vector.
func radialNorms(v [][3]float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Sqrt(x[0]*x[0] + x[1]*x[1] + x[2]*x[2])
	}
	return out
}

// rms returns sqrt(mean(x_i^2)) (spec.md §4.5, same formula for radii
// and velocity radii).
func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, xi := range x {
		sumSq += xi * xi
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

// dispersion returns the 3-component 1-D velocity dispersion (per-axis
// variance) and the scalar 3-D dispersion (sqrt of the summed
// variances), per spec.md §4.5.
func dispersion(vel [][3]float64) (oneD [3]float64, threeD float64) {
	n := len(vel)
	if n == 0 {
		return oneD, 0
	}
	var axisValues [3][]float64
	for axis := 0; axis < 3; axis++ {
		axisValues[axis] = make([]float64, n)
	}
	for i, v := range vel {
		for axis := 0; axis < 3; axis++ {
			axisValues[axis][i] = v[axis]
		}
	}
	var sumVar float64
	for axis := 0; axis < 3; axis++ {
		variance := stat.Variance(axisValues[axis], nil)
		oneD[axis] = variance
		sumVar += variance
	}
	return oneD, math.Sqrt(sumVar)
}

// vMax sweeps sorted radii, returning the maximum of
// sqrt(G*k*m_p/r_k) over k = 1..n (spec.md §4.5). r_k == 0 is skipped
// to avoid a division by zero at the halo's centre.
func vMax(radii []float64, partMass, g float64) float64 {
	if len(radii) == 0 {
		return 0
	}
	sorted := append([]float64(nil), radii...)
	sort.Float64s(sorted)

	var max float64
	for k, r := range sorted {
		if r <= 0 {
			continue
		}
		v := math.Sqrt(g * float64(k+1) * partMass / r)
		if v > max {
			max = v
		}
	}
	return max
}

// halfMassRadius returns the radius enclosing at least half the
// particles in the equal-mass case (spec.md §4.5): sort radii, take
// the value at the ceil(n/2)-th position.
func halfMassRadius(radii []float64) float64 {
	n := len(radii)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), radii...)
	sort.Float64s(sorted)
	half := (n + 1) / 2
	return sorted[half-1]
}
