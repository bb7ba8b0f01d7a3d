// Package coordinator implements the master/worker task dispatch
// spec.md §4.9 (component C9) describes: an in-process, channel-based
// stand-in for the source's MPI ranks, driving the phase-space
// refiner (C6) over host-halo and subhalo tasks.
//
// Grounded on spec.md §9's "Coordinator <-> worker protocol as
// message-passing state machine" design note (a typed tagged union
// {Ready, Start, Done, Exit} replacing untyped MPI tags) and the
// original source's master/worker split in `hosthalofinder`
// (original_source/core/kdhalofinder_mpi.py). Worker-goroutine
// completion is driven by golang.org/x/sync/errgroup, matching the
// pack's use of that package for exactly-once group-completion
// semantics.
package coordinator

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sarat-asymmetrica/haloforge/internal/config"
	"github.com/sarat-asymmetrica/haloforge/internal/halo"
	"github.com/sarat-asymmetrica/haloforge/internal/linking"
	"github.com/sarat-asymmetrica/haloforge/internal/obslog"
	"github.com/sarat-asymmetrica/haloforge/internal/particle"
	"github.com/sarat-asymmetrica/haloforge/internal/refine"
)

// TaskKind distinguishes a host-halo phase-space task from a subhalo
// phase-space task (spec.md §4.9, "each stitched halo as a
// phase-space task").
type TaskKind int

const (
	HostTask TaskKind = iota
	SubTask
)

// Task is one unit of work a worker (or the master, opportunistically)
// executes: a candidate halo's particle IDs, tagged with what kind of
// refinement to run. HostKey identifies which already-collected host
// record a SubTask's resulting subhalos belong to (spec.md §3,
// "subhalo's particle set is a subset of exactly one host's set").
type Task struct {
	Kind        TaskKind
	ParticleIDs []int
	HostKey     int
}

// Result is what a worker (or the master, running opportunistically)
// sends back after completing a Task.
type Result struct {
	Kind        TaskKind
	HostRecords []halo.Record
	Subhalos    []halo.Subhalo
}

// MsgKind is the coordinator <-> worker protocol's tagged-union
// discriminant (spec.md §4.9).
type MsgKind int

const (
	Ready MsgKind = iota
	Start
	Done
	Exit
)

// Message is the typed protocol envelope sent in both directions
// between the master and a worker.
type Message struct {
	Kind   MsgKind
	Worker int
	Task   Task
	Result Result
}

// Output is the accumulated, fully-dispatched run: every host record
// collected (in arrival order, so each record's slice index already
// is its dense ID per spec.md §3 "Final halo IDs are dense") plus
// every subhalo found, each carrying its host's HostKey in
// Subhalo.HostID. HostKey is the host's index in HostRecords, so
// aggregate.Build uses it directly as the host's dense ID.
type Output struct {
	HostRecords []halo.Record
	Subhalos    []halo.Subhalo
}

// Run dispatches initialTasks (the stitched host-halo candidates from
// C8) across cfg.NumWorkers worker goroutines, recursing into subhalo
// tasks as host records are accepted, until the queue drains and
// every worker has been sent Exit (spec.md §4.9 master loop).
func Run(ctx context.Context, snap *particle.Snapshot, lengths linking.Lengths, cfg config.Config, initialTasks []Task, log *logrus.Logger, stats *obslog.RunStats) (Output, error) {
	toMaster := make(chan Message, cfg.NumWorkers*4)
	toWorkers := make([]chan Message, cfg.NumWorkers)
	for w := range toWorkers {
		toWorkers[w] = make(chan Message)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.NumWorkers; w++ {
		w := w
		g.Go(func() error {
			return workerLoop(gctx, w, toWorkers[w], toMaster, snap, lengths, cfg)
		})
	}

	var output Output
	g.Go(func() error {
		return masterLoop(gctx, toMaster, toWorkers, initialTasks, snap, lengths, cfg, log, stats, &output)
	})

	if err := g.Wait(); err != nil {
		return Output{}, err
	}
	return output, nil
}

// workerLoop is one worker goroutine: announce Ready, execute
// whatever Task the master Starts, report Done, and exit cleanly on
// Exit (spec.md §4.9 "Workers loop").
func workerLoop(ctx context.Context, id int, in, out chan Message, snap *particle.Snapshot, lengths linking.Lengths, cfg config.Config) error {
	for {
		select {
		case out <- Message{Kind: Ready, Worker: id}:
		case <-ctx.Done():
			return ctx.Err()
		}

		select {
		case msg := <-in:
			if msg.Kind == Exit {
				return nil
			}
			result := execute(snap, lengths, cfg, msg.Task)
			select {
			case out <- Message{Kind: Done, Worker: id, Task: msg.Task, Result: result}:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// masterLoop is the single coordinator goroutine: hold the task
// queue, answer Ready with Start or Exit, and fold Done results (plus
// any subhalo tasks a bound host record spawns) back into Output
// (spec.md §4.9 "Master loop").
func masterLoop(ctx context.Context, toMaster chan Message, toWorkers []chan Message, initialTasks []Task, snap *particle.Snapshot, lengths linking.Lengths, cfg config.Config, log *logrus.Logger, stats *obslog.RunStats, output *Output) error {
	queue := append([]Task(nil), initialTasks...)
	closed := make([]bool, len(toWorkers))
	numClosed := 0

	handle := func(msg Message) error {
		switch msg.Kind {
		case Ready:
			if len(queue) > 0 {
				task := queue[0]
				queue = queue[1:]
				select {
				case toWorkers[msg.Worker] <- Message{Kind: Start, Task: task}:
				case <-ctx.Done():
					return ctx.Err()
				}
			} else {
				closed[msg.Worker] = true
				numClosed++
				select {
				case toWorkers[msg.Worker] <- Message{Kind: Exit}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case Done:
			recordResult(msg.Result, cfg, stats, output, &queue)
		}
		return nil
	}

	for numClosed < len(toWorkers) {
		// Opportunistic self-execution (spec.md §4.9): while a small
		// task sits at the head of the queue, service any pending
		// protocol message non-blockingly but otherwise drain the
		// tail ourselves instead of idling until a worker frees up.
		if len(queue) > 0 && len(queue[0].ParticleIDs) <= cfg.OpportunisticThreshold {
			select {
			case msg := <-toMaster:
				if err := handle(msg); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			default:
				task := queue[0]
				queue = queue[1:]
				result := execute(snap, lengths, cfg, task)
				recordResult(result, cfg, stats, output, &queue)
				if stats != nil {
					stats.CellsProcessed.Add(1)
				}
			}
			continue
		}

		select {
		case msg := <-toMaster:
			if err := handle(msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if log != nil {
		log.WithField("halos", len(output.HostRecords)).Info("coordinator: all workers exited")
	}
	return nil
}

// recordResult folds a completed Task's Result into output, enqueuing
// a SubTask for every real host record when subhalo finding is
// enabled (spec.md §2 data flow, "C9 dispatches each stitched halo as
// a phase-space task").
func recordResult(res Result, cfg config.Config, stats *obslog.RunStats, output *Output, queue *[]Task) {
	switch res.Kind {
	case HostTask:
		for _, rec := range res.HostRecords {
			hostKey := len(output.HostRecords)
			output.HostRecords = append(output.HostRecords, rec)
			if stats != nil {
				if rec.Real {
					stats.HalosAccepted.Add(1)
				} else {
					stats.HalosRejected.Add(1)
				}
			}
			if cfg.FindSubs && rec.Real {
				*queue = append(*queue, Task{Kind: SubTask, ParticleIDs: rec.ParticleIDs, HostKey: hostKey})
			}
		}
	case SubTask:
		output.Subhalos = append(output.Subhalos, res.Subhalos...)
		if stats != nil {
			stats.SubhalosFound.Add(int64(len(res.Subhalos)))
		}
	}
}

// execute runs the appropriate refiner for a Task, used identically
// by worker goroutines and the master's opportunistic self-execution
// path.
func execute(snap *particle.Snapshot, lengths linking.Lengths, cfg config.Config, task Task) Result {
	switch task.Kind {
	case SubTask:
		subhalos := refine.RefineSubhalos(snap, lengths, task.ParticleIDs, task.HostKey, cfg.PartThreshold)
		return Result{Kind: SubTask, Subhalos: subhalos}
	default:
		records := refine.Refine(snap, lengths, task.ParticleIDs, cfg.PartThreshold)
		sortRecordsBySize(records)
		return Result{Kind: HostTask, HostRecords: records}
	}
}

// sortRecordsBySize orders a single task's resulting records
// descending by particle count purely for reproducible logging; it
// does not affect dense-ID assignment across tasks, which remains
// arrival-order dependent (spec.md §5, "their integer IDs are not"
// deterministic).
func sortRecordsBySize(records []halo.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].NPart > records[j].NPart
	})
}
