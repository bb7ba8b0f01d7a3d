// Command halofinder is the development/demo CLI entrypoint for the
// halo-finding core (spec.md §1, C13 "ambient" addition in
// SPEC_FULL.md §4.13). It is explicitly not the snapshot-ingestion
// collaborator spec.md scopes out: it synthesizes a reproducible test
// snapshot or loads a tiny in-repo CSV fixture, runs the full
// pipeline, and logs the resulting catalogue summary.
//
// Grounded on the teacher's cmd/*/main.go programs (e.g.
// backend/cmd/full_pipeline/main.go), restructured around
// github.com/spf13/cobra the way the pack's other CLI-fronted repos
// do (other_examples/manifests/spatialmodel-inmap,
// other_examples/manifests/san-kum-dynsim).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarat-asymmetrica/haloforge/internal/config"
	"github.com/sarat-asymmetrica/haloforge/internal/obslog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "halofinder",
		Short: "Parallel phase-space dark-matter halo finder",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		configPath string
		workers    int
		synthetic  int
		input      string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the halo finder over a synthetic or CSV-fixture snapshot",
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			log := obslog.New()

			// Invariant violations raised by internal/aggregate.Build are
			// panics, by design (spec.md §7: "Invariants are checked at
			// the point they are created; violations are fatal"). This is
			// the one place that panic is turned into a logged, non-zero
			// exit (spec.md §6 exit-behaviour) rather than crashing the
			// process.
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("halofinder: fatal invariant violation")
					runErr = fmt.Errorf("halofinder: %v", r)
				}
			}()

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("halofinder: %w", err)
				}
				cfg = loaded
			}
			if workers > 0 {
				cfg.NumWorkers = workers
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("halofinder: %w", err)
			}

			snap, err := loadSnapshot(input, synthetic, seed)
			if err != nil {
				return fmt.Errorf("halofinder: %w", err)
			}

			log.WithField("n", snap.N).WithField("workers", cfg.NumWorkers).Info("halofinder: starting run")

			cat, stats, err := RunPipeline(context.Background(), snap, cfg, log)
			if err != nil {
				return fmt.Errorf("halofinder: pipeline failed: %w", err)
			}

			log.WithField("hosts", len(cat.Hosts)).
				WithField("subhalos", len(cat.Subhalos)).
				WithField("cells_processed", stats.CellsProcessed).
				WithField("halos_accepted", stats.HalosAccepted).
				WithField("halos_rejected", stats.HalosRejected).
				WithField("subhalos_found", stats.SubhalosFound).
				Info("halofinder: run complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML parameter file (overrides defaults)")
	cmd.Flags().IntVar(&workers, "workers", 0, "override NumWorkers from config (0 = use config value)")
	cmd.Flags().IntVar(&synthetic, "synthetic", 0, "generate a synthetic snapshot with this many particles")
	cmd.Flags().StringVar(&input, "input", "", "path to a CSV fixture (id,x,y,z,vx,vy,vz) with a sidecar .scalars.yaml")
	cmd.Flags().Int64Var(&seed, "seed", 1, "RNG seed for --synthetic snapshot generation")

	return cmd
}

func loadSnapshot(input string, synthetic int, seed int64) (*snapshotT, error) {
	if input != "" {
		return LoadCSVFixture(input)
	}
	if synthetic <= 0 {
		synthetic = 2000
	}
	return GenerateSynthetic(synthetic, 100, seed), nil
}
