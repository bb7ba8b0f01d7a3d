package coordinator

import (
	"context"
	"testing"

	"github.com/sarat-asymmetrica/haloforge/internal/config"
	"github.com/sarat-asymmetrica/haloforge/internal/linking"
	"github.com/sarat-asymmetrica/haloforge/internal/obslog"
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
)

func stationaryCluster(n int) *particle.Snapshot {
	pos := make([]particle.Vector3, n)
	vel := make([]particle.Vector3, n)
	for i := range pos {
		pos[i] = particle.Vector3{float64(i) * 0.001, 0, 0}
	}
	return &particle.Snapshot{
		N:          n,
		BoxSize:    1000,
		Redshift:   0,
		PartMass:   1e10,
		H:          0.7,
		Softening:  0.01,
		G:          1.3271244e11,
		Positions:  pos,
		Velocities: vel,
	}
}

func TestRunDispatchesSingleHostTask(t *testing.T) {
	n := 20
	snap := stationaryCluster(n)
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	lengths := linking.Lengths{Host: 10, Sub: 5, V0: 1, AlphaInit: 10, AlphaMin: 0.8, Decrement: 0.1}
	cfg := config.Default()
	cfg.NumWorkers = 2
	cfg.FindSubs = false
	cfg.OpportunisticThreshold = 0

	tasks := []Task{{Kind: HostTask, ParticleIDs: ids}}
	stats := &obslog.RunStats{}
	out, err := Run(context.Background(), snap, lengths, cfg, tasks, nil, stats)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(out.HostRecords) != 1 {
		t.Fatalf("got %d host records, want 1", len(out.HostRecords))
	}
	if out.HostRecords[0].NPart != n {
		t.Errorf("NPart = %d, want %d", out.HostRecords[0].NPart, n)
	}
	if stats.HalosAccepted.Load() != 1 {
		t.Errorf("HalosAccepted = %d, want 1", stats.HalosAccepted.Load())
	}
}

func TestRunHandlesMultipleIndependentTasks(t *testing.T) {
	n := 10
	snapA := stationaryCluster(n)
	idsA := make([]int, n)
	for i := range idsA {
		idsA[i] = i
	}
	lengths := linking.Lengths{Host: 10, Sub: 5, V0: 1, AlphaInit: 10, AlphaMin: 0.8, Decrement: 0.1}
	cfg := config.Default()
	cfg.NumWorkers = 3
	cfg.FindSubs = false

	tasks := []Task{
		{Kind: HostTask, ParticleIDs: idsA[:5]},
		{Kind: HostTask, ParticleIDs: idsA[5:]},
	}
	out, err := Run(context.Background(), snapA, lengths, cfg, tasks, nil, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(out.HostRecords) != 0 {
		t.Fatalf("got %d host records, want 0 (each task has only 5 particles < part threshold 10)", len(out.HostRecords))
	}
}

func TestRunWithNoTasksExitsCleanly(t *testing.T) {
	snap := stationaryCluster(5)
	lengths := linking.Lengths{Host: 10, Sub: 5, V0: 1, AlphaInit: 10, AlphaMin: 0.8, Decrement: 0.1}
	cfg := config.Default()
	cfg.NumWorkers = 2

	out, err := Run(context.Background(), snap, lengths, cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(out.HostRecords) != 0 || len(out.Subhalos) != 0 {
		t.Errorf("expected empty output for no tasks, got %+v", out)
	}
}
