// Package config holds the typed run parameters recognised by the
// halo finder (spec.md §6). It mirrors the teacher's
// MinimizerConfig/DefaultMinimizerConfig shape: a plain struct with a
// Default constructor, plus a YAML loader for the handful of runs
// that want to override defaults from a file instead of flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the parameters recognised by the halo finder.
type Config struct {
	// LLCoeff is the host spatial linking coefficient c_h (typical 0.2).
	LLCoeff float64 `yaml:"llcoeff"`
	// SubLLCoeff is the subhalo spatial linking coefficient c_s (typical 0.1).
	SubLLCoeff float64 `yaml:"sub_llcoeff"`
	// IniAlphaV is the initial velocity coefficient alpha_0 (typical 10).
	IniAlphaV float64 `yaml:"ini_alpha_v"`
	// MinAlphaV is the floor alpha_min (typical 0.8).
	MinAlphaV float64 `yaml:"min_alpha_v"`
	// Decrement is the multiplicative alpha step delta (typical 0.1).
	Decrement float64 `yaml:"decrement"`
	// NCells is the requested spatial task count. decompose.Cells
	// rounds such a value up to a multiple of NumWorkers; the
	// cmd/halofinder pipeline does not read NCells and runs one
	// spatial FOF pass per worker partition.
	NCells int `yaml:"n_cells"`
	// FindSubs enables subhalo finding.
	FindSubs bool `yaml:"findsubs"`
	// PartThreshold is the minimum particles per halo. The core fixes
	// this at 10 regardless of what is configured here (spec.md §6).
	PartThreshold int `yaml:"part_threshold"`

	// NumWorkers is the number of worker goroutines the coordinator
	// spawns, standing in for MPI ranks (not part of the original
	// parameter file; an ambient addition needed to run the pipeline
	// at all in a single process).
	NumWorkers int `yaml:"num_workers"`
	// OpportunisticThreshold is the npart ceiling below which the
	// coordinator will self-execute a task instead of waiting for a
	// worker (spec.md §4.9, "opportunistic work").
	OpportunisticThreshold int `yaml:"opportunistic_threshold"`
}

// Default returns the typical parameter values named in spec.md §6.
func Default() Config {
	return Config{
		LLCoeff:                0.2,
		SubLLCoeff:             0.1,
		IniAlphaV:              10.0,
		MinAlphaV:              0.8,
		Decrement:              0.1,
		NCells:                 0, // 0 means "derive from NumWorkers"
		FindSubs:               true,
		PartThreshold:          10,
		NumWorkers:             4,
		OpportunisticThreshold: 64,
	}
}

// Load reads a YAML configuration file, applying it on top of
// Default() so a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the core cannot run with. The
// minimum particle threshold is fixed at 10 regardless of what a
// config file requests (spec.md §6); Validate overrides rather than
// rejects it so a stray file value can't silently change the
// invariant halo records are supposed to satisfy.
func (c *Config) Validate() error {
	c.PartThreshold = 10
	if c.NumWorkers < 1 {
		return fmt.Errorf("config: num_workers must be >= 1, got %d", c.NumWorkers)
	}
	if c.LLCoeff <= 0 || c.SubLLCoeff <= 0 {
		return fmt.Errorf("config: linking coefficients must be positive")
	}
	if c.MinAlphaV <= 0 || c.IniAlphaV < c.MinAlphaV {
		return fmt.Errorf("config: require 0 < min_alpha_v <= ini_alpha_v")
	}
	if c.Decrement <= 0 || c.Decrement >= 1 {
		return fmt.Errorf("config: decrement must be in (0, 1)")
	}
	return nil
}
