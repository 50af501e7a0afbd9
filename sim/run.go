package sim

import "github.com/sirupsen/logrus"

// Run is the one-shot scope for a whole simulation run: its Specs,
// position among a series of runs, event queue, and RNG are all created
// once and shared read-only through every Point produced during the run.
// A Run exclusively owns its EventQueue; nothing it creates is shared
// across runs.
type Run struct {
	Specs    Specs
	RunIndex int
	RunCount int
	Queue    *EventQueue
	RNG      *PartitionedRNG
}

// SimCtx is the Simulation context: the outermost evaluation scope,
// carrying nothing beyond a Run handle. Dynamics, Event, and Process
// contexts all refine SimCtx by embedding it.
type SimCtx struct {
	Run *Run
}

func newRun(specs Specs, runIndex, runCount int, seed int64) *Run {
	specs.Validate()
	return &Run{
		Specs:    specs,
		RunIndex: runIndex,
		RunCount: runCount,
		Queue:    NewEventQueue(specs),
		RNG:      NewPartitionedRNG(seed),
	}
}

// startPoint returns the Point at the run's start time, iteration 0,
// phase 0 — the coordinate a model's top-level computation first observes.
func (r *Run) startPoint() Point {
	return Point{Specs: r.Specs, Run: r, Time: r.Specs.Start, Iteration: 0, Phase: 0}
}

// RunSimulation synchronously executes one run of model against specs,
// seeding its partitioned RNG from seed, and returns whatever model
// yields. model receives the run's SimCtx and is responsible for driving
// its own top-level computation (typically a Dynamics value sampled at
// Specs.Stop, or a Process started against the run's initial EventCtx).
func RunSimulation(model func(*SimCtx) any, specs Specs, seed int64) any {
	run := newRun(specs, 0, 1, seed)
	ctx := &SimCtx{Run: run}
	logrus.Debugf("sim: starting run %d/%d, specs=%+v", run.RunIndex, run.RunCount, specs)
	result := model(ctx)
	logrus.Debugf("sim: run %d/%d finished at clock=%v", run.RunIndex, run.RunCount, run.Queue.CurrentTime())
	return result
}

// RunSimulationSeries deterministically executes n runs sharing specs,
// differing only in RunIndex (and therefore in the RNG substreams model
// code draws via Run.RNG). Runs execute sequentially — the kernel performs
// no parallel execution of a single simulation run or across runs.
func RunSimulationSeries(model func(*SimCtx) any, specs Specs, n int) []any {
	if n <= 0 {
		logrus.Panicf("sim: RunSimulationSeries requires n > 0, got %d", n)
	}
	results := make([]any, n)
	for i := 0; i < n; i++ {
		run := newRun(specs, i, n, int64(i))
		ctx := &SimCtx{Run: run}
		results[i] = model(ctx)
	}
	return results
}
