// Package refine implements the phase-space refiner (spec.md §4.6,
// component C6): the algorithmic core of the finder. It takes a
// spatial candidate halo's global particle IDs and iteratively
// re-clusters it in 6-D phase space at a shrinking velocity-space
// tolerance until every resulting piece is either energetically bound
// or has exhausted the alpha floor.
//
// Grounded on the original source's `get_real_host_halos` /
// `get_real_sub_halos` recursion
// (original_source/core/kdhalofinder_mpi.py), translated from its
// explicit `while KE/GE >= 1 and ... new_vlcoeff >= 0.8` loop plus a
// side dict of deferred splits into an explicit worklist, in the
// shape of the teacher's `sampling.BasinExplorer` candidate-worklist
// pattern and `physics.MinimizeEnergy`'s explicit convergence-loop
// structure (step counter, tolerance/floor checks, structured
// result) — see backend/internal/sampling/basin_explorer.go and
// backend/internal/physics/minimizer.go.
package refine

import (
	"math"
	"sort"

	"github.com/sarat-asymmetrica/haloforge/internal/energy"
	"github.com/sarat-asymmetrica/haloforge/internal/geometry"
	"github.com/sarat-asymmetrica/haloforge/internal/halo"
	"github.com/sarat-asymmetrica/haloforge/internal/linking"
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
	"github.com/sarat-asymmetrica/haloforge/internal/properties"
	"github.com/sarat-asymmetrica/haloforge/internal/spatial"
	"github.com/sarat-asymmetrica/haloforge/internal/unionfind"
)

// phaseSpaceRadius is the fixed 6-D FOF radius the rescaled
// (pos/b, vel/vL) vectors are linked at: sqrt(2), equivalent to
// independent unit-radius thresholds in the position-scaled and
// velocity-scaled halves of the vector (spec.md §4.6 step 5).
var phaseSpaceRadius = math.Sqrt2

// candidate is one entry on the refiner's worklist: a set of global
// particle IDs still awaiting a phase-space pass, carrying the alpha
// coefficient it should be tested at next.
type candidate struct {
	ids   []int
	alpha float64
}

// Refine runs the host-halo phase-space refiner over particleIDs
// (global snapshot indices produced by the spatial FOF / cross-rank
// merge stages), using the host spatial and velocity linking lengths
// from lengths. Returns zero or more halo records (spec.md §4.6
// "Output: a list of halo records").
func Refine(snap *particle.Snapshot, lengths linking.Lengths, particleIDs []int, partThreshold int) []halo.Record {
	return refineLoop(snap, lengths.Host, lengths.V0, lengths.AlphaInit, lengths.AlphaMin, lengths.Decrement, partThreshold, particleIDs)
}

// RefineSubhalos finds and refines subhalos within a single
// already-accepted host halo's particle set: first a spatial FOF at
// b_sub over the host's own particles, then the phase-space refiner
// on each resulting spatial subhalo using the subhalo velocity
// coefficient scaling (spec.md §4.6, "Subhalo variant"). hostID tags
// every resulting record so the caller can assert the host-subset
// invariant (spec.md §3).
func RefineSubhalos(snap *particle.Snapshot, lengths linking.Lengths, hostParticleIDs []int, hostID int, partThreshold int) []halo.Subhalo {
	hostPos, _ := geometry.WrapHalo(gatherPos(snap, hostParticleIDs), snap.BoxSize)
	points := make([][]float64, len(hostPos))
	for i, p := range hostPos {
		points[i] = []float64{p[0], p[1], p[2]}
	}
	tree := spatial.NewTree(points, 0, false)
	_, members := unionfind.FindComponents(tree, lengths.Sub)

	var out []halo.Subhalo
	for _, localIdxs := range members {
		if len(localIdxs) < partThreshold {
			continue
		}
		subIDs := make([]int, len(localIdxs))
		for i, li := range localIdxs {
			subIDs[i] = hostParticleIDs[li]
		}
		records := refineLoop(snap, lengths.Sub, lengths.SubV0(), lengths.AlphaInit, lengths.AlphaMin, lengths.Decrement, partThreshold, subIDs)
		for _, r := range records {
			out = append(out, halo.Subhalo{Record: r, HostID: hostID})
		}
	}
	return out
}

// refineLoop is the shared worklist algorithm (spec.md §4.6 steps
// 1-8) used by both Refine and RefineSubhalos, parameterised on the
// spatial linking length b and base velocity linking length v0 so the
// host and subhalo variants differ only in which lengths they pass.
func refineLoop(snap *particle.Snapshot, b, v0, alphaInit, alphaMin, decrement float64, partThreshold int, particleIDs []int) []halo.Record {
	worklist := []candidate{{ids: particleIDs, alpha: alphaInit}}
	var out []halo.Record

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]

		alpha := cur.alpha * (1 - decrement)
		npart := len(cur.ids)

		pos := gatherPos(snap, cur.ids)
		vel := gatherVel(snap, cur.ids)
		pos, candMean := geometry.WrapHalo(pos, snap.BoxSize)
		addHubbleFlow(pos, vel, snap)

		vL := linking.VelocityLinkingLength(v0, alpha, snap.PartMass, npart)
		phaseVectors := buildPhaseVectors(pos, vel, b, vL)

		tree := spatial.NewTree(phaseVectors, 0, false)
		_, members := unionfind.FindComponents(tree, phaseSpaceRadius)

		for _, localIdxs := range members {
			if len(localIdxs) < partThreshold {
				continue
			}

			subIDs := make([]int, len(localIdxs))
			subPos := make([][3]float64, len(localIdxs))
			subVel := make([][3]float64, len(localIdxs))
			for i, li := range localIdxs {
				subIDs[i] = cur.ids[li]
				subPos[i] = pos[li]
				subVel[i] = vel[li]
			}

			// subPos is relative to the candidate's mean, so the
			// sub-component's own mean is added back onto candMean.
			subPos, subMean := geometry.WrapHalo(subPos, snap.BoxSize)
			mean := [3]float64{candMean[0] + subMean[0], candMean[1] + subMean[1], candMean[2] + subMean[2]}
			mode := energy.ModeFor(len(subIDs))
			total, ke, ge := energy.Compute(subPos, subVel, snap, mode)

			bound := ge > 0 && ke/ge <= 1
			if !bound && alpha > alphaMin {
				worklist = append(worklist, candidate{ids: subIDs, alpha: alpha})
				continue
			}

			out = append(out, buildRecord(subIDs, subPos, subVel, mean, total, ke, ge, bound, snap))
		}
	}
	return out
}

// buildRecord assembles a halo.Record from an accepted or
// floor-abandoned sub-component: velocity-centres vel for the
// property calculations (spec.md §4.5, "All operate on centred
// coordinates" — positions are already centred by WrapHalo), sorts
// the particle-id set, and reduces the mean position back to a
// canonical [0, boxSize) centre (spec.md §4.3 inverse operation).
func buildRecord(ids []int, pos, vel [][3]float64, mean [3]float64, total, ke, ge float64, real bool, snap *particle.Snapshot) halo.Record {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	meanVel := meanOf(vel)
	centredVel := make([][3]float64, len(vel))
	for i, v := range vel {
		centredVel[i] = [3]float64{v[0] - meanVel[0], v[1] - meanVel[1], v[2] - meanVel[2]}
	}

	props := properties.Compute(pos, centredVel, snap.PartMass, snap.G)
	centre := geometry.UnwrapCentre(mean, snap.BoxSize)

	return halo.Record{
		ParticleIDs: sorted,
		NPart:       len(sorted),
		Real:        real,
		MeanPos:     particle.Vector3(centre),
		MeanVel:     particle.Vector3(meanVel),
		Energy:      total,
		KE:          ke,
		GE:          ge,
		Props:       props,
	}
}

func meanOf(v [][3]float64) [3]float64 {
	var mean [3]float64
	if len(v) == 0 {
		return mean
	}
	for _, x := range v {
		mean[0] += x[0]
		mean[1] += x[1]
		mean[2] += x[2]
	}
	n := float64(len(v))
	mean[0] /= n
	mean[1] /= n
	mean[2] /= n
	return mean
}

// addHubbleFlow adds the Hubble-flow peculiar-velocity correction
// v_i += H(z)*(x_i - xbar)*(1+z)^(-1/2) (spec.md §4.6 step 3) in
// place. pos is assumed already centred by WrapHalo, so pos[i] itself
// is (x_i - xbar). H(z) is evaluated via the matter-dominated
// (Einstein-de Sitter) approximation H(z) = 100*h*(1+z)^1.5 km/s/Mpc,
// the simplest form consistent with the scalars this module's data
// model carries (no Omega_m/Omega_Lambda are tracked) — see
// DESIGN.md for this judgement call.
func addHubbleFlow(pos, vel [][3]float64, snap *particle.Snapshot) {
	hz := 100 * snap.H * math.Pow(1+snap.Redshift, 1.5)
	scale := hz / math.Sqrt(1+snap.Redshift)
	for i := range vel {
		for axis := 0; axis < 3; axis++ {
			vel[i][axis] += scale * pos[i][axis]
		}
	}
}

// buildPhaseVectors rescales centred positions and Hubble-corrected
// velocities into the 6-D phase-space vector (x/b, v/vL) spec.md
// §4.6 step 5 describes.
func buildPhaseVectors(pos, vel [][3]float64, b, vL float64) [][]float64 {
	out := make([][]float64, len(pos))
	for i := range pos {
		out[i] = []float64{
			pos[i][0] / b, pos[i][1] / b, pos[i][2] / b,
			vel[i][0] / vL, vel[i][1] / vL, vel[i][2] / vL,
		}
	}
	return out
}

func gatherPos(snap *particle.Snapshot, ids []int) [][3]float64 {
	out := make([][3]float64, len(ids))
	for i, id := range ids {
		out[i] = [3]float64(snap.Positions[id])
	}
	return out
}

func gatherVel(snap *particle.Snapshot, ids []int) [][3]float64 {
	out := make([][3]float64, len(ids))
	for i, id := range ids {
		out[i] = [3]float64(snap.Velocities[id])
	}
	return out
}
