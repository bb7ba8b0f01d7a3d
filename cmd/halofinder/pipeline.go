package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarat-asymmetrica/haloforge/internal/aggregate"
	"github.com/sarat-asymmetrica/haloforge/internal/config"
	"github.com/sarat-asymmetrica/haloforge/internal/coordinator"
	"github.com/sarat-asymmetrica/haloforge/internal/crossrank"
	"github.com/sarat-asymmetrica/haloforge/internal/decompose"
	"github.com/sarat-asymmetrica/haloforge/internal/linking"
	"github.com/sarat-asymmetrica/haloforge/internal/obslog"
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
	"github.com/sarat-asymmetrica/haloforge/internal/spatial"
	"github.com/sarat-asymmetrica/haloforge/internal/unionfind"
)

// snapshotT is this command's name for particle.Snapshot: the CLI only
// ever talks to the engine through the particle package's own type, so
// this alias exists purely to avoid repeating the import qualifier in
// flag-parsing glue (spec.md §1, cmd/halofinder is explicitly not the
// ingestion collaborator — it just needs *something* to hand the
// engine).
type snapshotT = particle.Snapshot

// RunPipeline wires C7 (decompose) through C10 (aggregate) exactly as
// spec.md §2's data flow describes: partition particles across
// workers, run spatial FOF (C1+C2) within each partition against the
// broadcast global index, stitch cross-rank halos (C8), dispatch each
// stitched halo as a phase-space task to the coordinator (C9, which
// internally drives C6/C1/C2/C3/C4), and assemble the final catalogue
// (C10).
func RunPipeline(ctx context.Context, snap *snapshotT, cfg config.Config, log *logrus.Logger) (*aggregate.Catalogue, obslog.RunStatsSnapshot, error) {
	lengths := linking.Derive(snap, cfg)

	points := make([][]float64, snap.N)
	for i, p := range snap.Positions {
		points[i] = []float64{p[0], p[1], p[2]}
	}
	globalIndex := spatial.NewTree(points, snap.BoxSize, true)

	ranges := decompose.Partition(snap.N, cfg.NumWorkers)
	if log != nil {
		log.WithField("partitions", len(ranges)).WithField("host_ll", lengths.Host).Info("halofinder: running per-partition spatial FOF")
	}

	var spatialHalos [][]int
	for _, rg := range ranges {
		subset := make([]int, rg.Len())
		for i := range subset {
			subset[i] = rg.Lo + i
		}
		members := unionfind.FindComponentsSubset(globalIndex, lengths.Host, subset)
		for _, ids := range members {
			spatialHalos = append(spatialHalos, ids)
		}
	}

	merged := crossrank.Merge(spatialHalos, cfg.PartThreshold)
	if log != nil {
		log.WithField("spatial_candidates", len(spatialHalos)).WithField("stitched", len(merged)).Info("halofinder: cross-rank merge complete")
	}

	tasks := make([]coordinator.Task, len(merged))
	for i, ids := range merged {
		tasks[i] = coordinator.Task{Kind: coordinator.HostTask, ParticleIDs: ids}
	}

	stats := &obslog.RunStats{}
	out, err := coordinator.Run(ctx, snap, lengths, cfg, tasks, log, stats)
	if err != nil {
		return nil, obslog.RunStatsSnapshot{}, fmt.Errorf("pipeline: coordinator run failed: %w", err)
	}

	cat := aggregate.Build(out.HostRecords, out.Subhalos, snap.N)
	cat.Summary(log, snap, lengths)
	return cat, stats.Snapshot(), nil
}
