// Package geometry implements the periodic wrap/unwrap transform
// (spec.md §4.3, component C3) used to bring a halo's particle cloud
// into a locally Euclidean frame before energy and property
// calculations, which otherwise have no notion of the box's periodic
// boundary.
//
// Grounded on the original source's `wrap_halo` (original_source/core/utilities.py):
// shift every particle more than L/2 from the axis-maximum member by
// +L on that axis, then centre about the mean. The additive-shift
// approach is kept as-is, including its documented limitation: it
// silently produces an incorrect mean when a halo's true extent
// exceeds L/2 along any axis (spec.md §4.3, "Limitation").
package geometry

import "math"

// WrapHalo brings pos into a locally Euclidean frame: particles more
// than boxSize/2 from the axis-maximum member are shifted by +boxSize
// on that axis, then the mean is subtracted so the cloud is centred
// about the origin. It returns the centred positions and the mean
// position (in the shifted frame, before the modulo-L reduction
// UnwrapCentre performs) so callers can recover a canonical [0,
// boxSize) centre later.
//
// pos is modified in place and also returned for convenience. Does
// not detect or correct the case where a halo's extent exceeds
// boxSize/2 along any axis (spec.md §4.3 limitation, carried over
// unchanged).
func WrapHalo(pos [][3]float64, boxSize float64) (wrapped [][3]float64, mean [3]float64) {
	if len(pos) == 0 {
		return pos, mean
	}

	var maxPos [3]float64
	for axis := 0; axis < 3; axis++ {
		m := pos[0][axis]
		for _, p := range pos[1:] {
			if p[axis] > m {
				m = p[axis]
			}
		}
		maxPos[axis] = m
	}

	for i := range pos {
		for axis := 0; axis < 3; axis++ {
			if maxPos[axis]-pos[i][axis] > 0.5*boxSize {
				pos[i][axis] += boxSize
			}
		}
	}

	n := float64(len(pos))
	for _, p := range pos {
		for axis := 0; axis < 3; axis++ {
			mean[axis] += p[axis]
		}
	}
	for axis := 0; axis < 3; axis++ {
		mean[axis] /= n
	}

	for i := range pos {
		for axis := 0; axis < 3; axis++ {
			pos[i][axis] -= mean[axis]
		}
	}
	return pos, mean
}

// UnwrapCentre recovers a canonical centre position in [0, boxSize)
// from the mean WrapHalo returned, reducing it modulo boxSize (spec.md
// §4.3, "inverse operation"). WrapHalo already subtracts the mean from
// the member positions, so there is no separate shift to add back —
// the caller's mean is itself the shifted centre.
func UnwrapCentre(mean [3]float64, boxSize float64) [3]float64 {
	var out [3]float64
	for axis := 0; axis < 3; axis++ {
		m := mean[axis]
		m = mod(m, boxSize)
		out[axis] = m
	}
	return out
}

func mod(a, m float64) float64 {
	if m <= 0 {
		return a
	}
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}
