// Package halo defines the final output record shapes spec.md §3
// describes: a host Record and a Subhalo that extends it with a host
// ID. These are the types every component from the phase-space
// refiner (C6) through the result aggregator (C10) passes around.
package halo

import (
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
	"github.com/sarat-asymmetrica/haloforge/internal/properties"
)

// Record is a finished halo: a particle-id set plus the energetics
// and derived properties spec.md §3 "Halo record" lists. ParticleIDs
// are global snapshot indices, sorted ascending.
type Record struct {
	ParticleIDs []int
	NPart       int
	Real        bool

	MeanPos particle.Vector3
	MeanVel particle.Vector3

	Energy, KE, GE float64

	Props properties.Properties
}

// Subhalo is a Record whose particle set is a subset of exactly one
// host halo's set (spec.md §3 invariant), identified by HostID.
type Subhalo struct {
	Record
	HostID int
}
