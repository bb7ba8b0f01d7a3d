package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarat-asymmetrica/haloforge/internal/particle"
)

// GenerateSynthetic builds a reproducible demo snapshot of n particles
// in a periodic box of side boxSize: a uniform background plus one
// embedded Plummer-like bound sphere, so a default run has at least
// one real halo to report (spec.md §8 scenario 2's shape, used here
// only as a demo fixture — not a scientific initial-conditions
// generator).
func GenerateSynthetic(n int, boxSize float64, seed int64) *snapshotT {
	rng := rand.New(rand.NewSource(seed))

	clusterN := n / 10
	if clusterN < 20 {
		clusterN = 0
	}
	backgroundN := n - clusterN

	positions := make([]particle.Vector3, 0, n)
	velocities := make([]particle.Vector3, 0, n)

	for i := 0; i < backgroundN; i++ {
		positions = append(positions, particle.Vector3{
			rng.Float64() * boxSize,
			rng.Float64() * boxSize,
			rng.Float64() * boxSize,
		})
		velocities = append(velocities, particle.Vector3{
			rng.NormFloat64() * 200,
			rng.NormFloat64() * 200,
			rng.NormFloat64() * 200,
		})
	}

	if clusterN > 0 {
		centre := particle.Vector3{boxSize / 2, boxSize / 2, boxSize / 2}
		plummerScale := boxSize * 0.01
		for i := 0; i < clusterN; i++ {
			r := plummerScale / math.Sqrt(math.Pow(rng.Float64(), -2.0/3.0)-1)
			dir := randomUnitVector(rng)
			positions = append(positions, particle.Vector3{
				centre[0] + r*dir[0],
				centre[1] + r*dir[1],
				centre[2] + r*dir[2],
			})
			velocities = append(velocities, particle.Vector3{
				rng.NormFloat64() * 20,
				rng.NormFloat64() * 20,
				rng.NormFloat64() * 20,
			})
		}
	}

	snap, err := particle.NewSnapshot(n, boxSize, 0, 1e10, 0.7, positions, velocities)
	if err != nil {
		// n/positions/velocities are constructed to match above; a
		// mismatch here would be this function's own bug, not an
		// input-contract violation a caller could recover from.
		panic(fmt.Sprintf("halofinder: GenerateSynthetic built an inconsistent snapshot: %v", err))
	}
	return snap
}

// randomUnitVector returns a uniformly-distributed point on the unit
// sphere via normalised Gaussian components.
func randomUnitVector(rng *rand.Rand) particle.Vector3 {
	v := particle.Vector3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	n := v.Norm()
	if n == 0 {
		return particle.Vector3{0, 0, 1}
	}
	return v.Scale(1 / n)
}

// fixtureScalars is the sidecar YAML shape LoadCSVFixture expects
// alongside a CSV of particle rows: the snapshot-level scalars
// spec.md §6 lists as collaborator-owned, reduced to the handful this
// module's demo fixture needs to stand in for them.
type fixtureScalars struct {
	BoxSize  float64 `yaml:"boxsize"`
	Redshift float64 `yaml:"redshift"`
	PartMass float64 `yaml:"pmass"`
	H        float64 `yaml:"h"`
}

// LoadCSVFixture reads a tiny in-repo test fixture: a CSV of
// `id,x,y,z,vx,vy,vz` rows plus a `<path>.scalars.yaml` sidecar
// carrying the snapshot scalars spec.md §6 names. This is explicitly
// not a general snapshot ingestion facility (spec.md Non-goals) — it
// exists only to drive this module's own demo/tests without the
// ingestion collaborator.
func LoadCSVFixture(path string) (*snapshotT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("halofinder: opening fixture %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("halofinder: parsing fixture %s: %w", path, err)
	}

	var positions []particle.Vector3
	var velocities []particle.Vector3
	for _, row := range rows {
		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		if len(row) != 7 {
			return nil, fmt.Errorf("halofinder: fixture %s: row %v does not have 7 columns (id,x,y,z,vx,vy,vz)", path, row)
		}
		vals := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("halofinder: fixture %s: parsing column %d of row %v: %w", path, i+1, row, err)
			}
			vals[i] = v
		}
		positions = append(positions, particle.Vector3{vals[0], vals[1], vals[2]})
		velocities = append(velocities, particle.Vector3{vals[3], vals[4], vals[5]})
	}

	scalars, err := loadFixtureScalars(path)
	if err != nil {
		return nil, err
	}

	snap, err := particle.NewSnapshot(len(positions), scalars.BoxSize, scalars.Redshift, scalars.PartMass, scalars.H, positions, velocities)
	if err != nil {
		return nil, fmt.Errorf("halofinder: fixture %s: %w", path, err)
	}
	return snap, nil
}

// loadFixtureScalars reads the `<path>.scalars.yaml` sidecar next to a
// CSV fixture.
func loadFixtureScalars(csvPath string) (fixtureScalars, error) {
	sidecar := csvPath + ".scalars.yaml"
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return fixtureScalars{}, fmt.Errorf("halofinder: reading sidecar %s: %w", sidecar, err)
	}
	var s fixtureScalars
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fixtureScalars{}, fmt.Errorf("halofinder: parsing sidecar %s: %w", sidecar, err)
	}
	return s, nil
}
