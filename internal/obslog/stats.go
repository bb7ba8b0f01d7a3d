package obslog

import "sync/atomic"

// RunStats accumulates the minimal run-summary counters every one of
// the teacher's cmd/ demo programs prints at the end of a run
// (elapsed phases, counts), scoped to what this module's own pipeline
// produces. Safe for concurrent increment from worker goroutines.
type RunStats struct {
	CellsProcessed   atomic.Int64
	SpatialHalos     atomic.Int64
	PhaseSpaceSplits atomic.Int64
	HalosAccepted    atomic.Int64
	HalosRejected    atomic.Int64
	SubhalosFound    atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters as plain
// integers, suitable for logging or assertions in tests.
func (s *RunStats) Snapshot() RunStatsSnapshot {
	return RunStatsSnapshot{
		CellsProcessed:   s.CellsProcessed.Load(),
		SpatialHalos:     s.SpatialHalos.Load(),
		PhaseSpaceSplits: s.PhaseSpaceSplits.Load(),
		HalosAccepted:    s.HalosAccepted.Load(),
		HalosRejected:    s.HalosRejected.Load(),
		SubhalosFound:    s.SubhalosFound.Load(),
	}
}

// RunStatsSnapshot is an immutable point-in-time read of RunStats.
type RunStatsSnapshot struct {
	CellsProcessed   int64
	SpatialHalos     int64
	PhaseSpaceSplits int64
	HalosAccepted    int64
	HalosRejected    int64
	SubhalosFound    int64
}
