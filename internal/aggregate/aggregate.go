// Package aggregate implements the result aggregator (spec.md §4.10,
// component C10): assigning dense halo IDs, building the
// per-particle (host, sub) assignment array, and computing subhalo
// occupancy per host.
//
// Grounded on the original source's final bookkeeping pass in
// `hosthalofinder` (original_source/core/kdhalofinder_mpi.py), which
// walks collected results assigning a running integer ID and
// populating a particle->halo lookup; here realised as plain slices
// (spec.md §9, "Replacing dynamically-typed containers" — "the 'dict
// keyed by (rank, id)' usage is a pair of flat arrays indexed by a
// dense sequence").
package aggregate

import (
	"github.com/sirupsen/logrus"

	"github.com/sarat-asymmetrica/haloforge/internal/halo"
	"github.com/sarat-asymmetrica/haloforge/internal/linking"
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
)

// unassigned is the sentinel particle-assignment value spec.md §3
// defines for "not in any halo".
const unassigned = -2

// Catalogue is the final, dense-ID-assigned halo catalogue: the host
// and subhalo records in their collection order (index == dense ID,
// spec.md §3 "Final halo IDs are dense [0, H)"), the particle
// assignment table, and per-host subhalo occupancy.
type Catalogue struct {
	Hosts    []halo.Record
	Subhalos []halo.Subhalo

	// Assignment[p] is [hostID, subID], each defaulting to the -2
	// sentinel when the particle is not a member of that kind of
	// halo (spec.md §3 invariant).
	Assignment [][2]int

	// Occupancy[h] is the number of subhalos whose HostID is h.
	Occupancy []int
}

// Build assembles a Catalogue from the coordinator's Output, given
// the total particle count n. It asserts the spec.md §3 invariants
// that are fatal per spec.md §7 ("Subhalo-multi-host inconsistency ...
// fatal, asserted in C10"): every subhalo's particle set must be a
// subset of exactly its declared host's set. hosts and subhalos are
// taken to already be in collection order (coordinator.Output
// preserves arrival order), so a record's slice index is its dense
// ID; subhalos carry their host's index via HostID already (the
// coordinator assigns it as the host record is appended).
func Build(hosts []halo.Record, subhalos []halo.Subhalo, n int) *Catalogue {
	cat := &Catalogue{
		Hosts:      hosts,
		Subhalos:   subhalos,
		Assignment: make([][2]int, n),
		Occupancy:  make([]int, len(hosts)),
	}
	for i := range cat.Assignment {
		cat.Assignment[i] = [2]int{unassigned, unassigned}
	}

	for hostID, rec := range hosts {
		for _, p := range rec.ParticleIDs {
			cat.Assignment[p][0] = hostID
		}
	}

	for subID, sub := range subhalos {
		assertSubsetOfHost(sub, hosts[sub.HostID])
		for _, p := range sub.ParticleIDs {
			if cat.Assignment[p][0] != sub.HostID {
				panic("aggregate: subhalo particle maps to a host other than its declared HostID")
			}
			cat.Assignment[p][1] = subID
		}
		cat.Occupancy[sub.HostID]++
	}

	return cat
}

// Summary logs the root-level attributes spec.md §6 names for the
// output collaborator's on-disk group (`snap_nPart`, `boxsize`,
// `part_mass`, `h`, `linking_length`, `redshift`) plus the catalogue's
// own host/subhalo counts. It only logs — this module does not write
// the output group itself (spec.md §1, serialisation is a
// collaborator concern).
func (c *Catalogue) Summary(log *logrus.Logger, snap *particle.Snapshot, lengths linking.Lengths) {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"snap_nPart":     snap.N,
		"boxsize":        snap.BoxSize,
		"part_mass":      snap.PartMass,
		"h":              snap.H,
		"linking_length": lengths.Host,
		"redshift":       snap.Redshift,
		"hosts":          len(c.Hosts),
		"subhalos":       len(c.Subhalos),
	}).Info("halofinder: catalogue summary")
}

// assertSubsetOfHost panics if sub's particle set is not a subset of
// host's (spec.md §3 invariant, fatal per spec.md §7).
func assertSubsetOfHost(sub halo.Subhalo, host halo.Record) {
	hostSet := make(map[int]struct{}, len(host.ParticleIDs))
	for _, p := range host.ParticleIDs {
		hostSet[p] = struct{}{}
	}
	for _, p := range sub.ParticleIDs {
		if _, ok := hostSet[p]; !ok {
			panic("aggregate: subhalo particle set is not a subset of its host's particle set")
		}
	}
}
