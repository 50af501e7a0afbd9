package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GIVEN a process that holds for 5 time units starting at t=0
// WHEN another event interrupts it at t=2
// THEN it resumes at t=2 with Interrupted() true, per spec.md's scenario 5.
func TestHoldThenInterrupt(t *testing.T) {
	sctx := testSimCtx()
	var pid *ProcessID
	var resumedAt float64
	var interruptedInside bool

	RunEventNow(sctx, func(ctx EventCtx) {
		pid = RunProcess(ctx, func(pc *ProcessCtx) {
			Hold(pc, 5)
			resumedAt = pc.Point.Time
			interruptedInside = pc.PID().Interrupted()
		})
	})

	sctx.Run.Queue.Enqueue(2, func(p Point) {
		Interrupt(newEventCtx(sctx, p), pid)
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 2, Iteration: 2, Phase: -1})

	require.Equal(t, 2.0, resumedAt)
	assert.True(t, interruptedInside, "expected Interrupted() to read true inside the resumed continuation")
	assert.True(t, pid.Finished(), "process body should have run to completion once interrupt resumed it")
}

func TestHoldRunsToCompletionWithoutInterrupt(t *testing.T) {
	sctx := testSimCtx()
	var resumedAt float64

	RunEventNow(sctx, func(ctx EventCtx) {
		RunProcess(ctx, func(pc *ProcessCtx) {
			Hold(pc, 5)
			resumedAt = pc.Point.Time
		})
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 5, Iteration: 5, Phase: -1})

	assert.Equal(t, 5.0, resumedAt)
}

// GIVEN a process awaiting a signal
// WHEN it is cancelled before the signal fires
// THEN the signal has zero handlers left when it later fires, and the
//
//	process's onCancel callback ran exactly once, per spec.md's scenario 6.
func TestCancelUnsubscribesFromSignal(t *testing.T) {
	sctx := testSimCtx()
	s := NewSignalSource[int]()
	cancelCount := 0
	var pid *ProcessID

	RunEventNow(sctx, func(ctx EventCtx) {
		pid = RunProcess(ctx, func(pc *ProcessCtx) {
			Await(pc, s)
		}, WithOnCancel(func() { cancelCount++ }))
	})
	require.Equal(t, 1, s.HandlerCount(), "handler count before cancel")

	sctx.Run.Queue.Enqueue(1, func(p Point) {
		Cancel(newEventCtx(sctx, p), pid)
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 1, Iteration: 1, Phase: -1})

	assert.Equal(t, 0, s.HandlerCount(), "handler count after cancel")
	assert.Equal(t, 1, cancelCount, "cancel callback should run exactly once")
	assert.True(t, pid.Cancelled())
	assert.True(t, pid.Finished())

	sctx.Run.Queue.Enqueue(2, func(p Point) {
		s.Trigger(42)
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 2, Iteration: 2, Phase: -1})
	assert.Equal(t, 1, cancelCount, "cancel callback ran again on a later trigger")
}

func TestParallelWaitsForAllChildren(t *testing.T) {
	sctx := testSimCtx()
	var finished []string

	RunEventNow(sctx, func(ctx EventCtx) {
		RunProcess(ctx, func(pc *ProcessCtx) {
			err := Parallel(pc, NoLinkage, []func(*ProcessCtx){
				func(cpc *ProcessCtx) { Hold(cpc, 3); finished = append(finished, "a") },
				func(cpc *ProcessCtx) { finished = append(finished, "b") },
			})
			assert.NoError(t, err)
			finished = append(finished, "done")
		})
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 3, Iteration: 3, Phase: -1})

	assert.Equal(t, []string{"b", "a", "done"}, finished)
}

func TestParallelAllChildrenFinishSynchronously(t *testing.T) {
	// Regression test for the race where every child finishes during the
	// spawn loop itself, before Parallel's caller has a chance to
	// subscribe via Await: without the done/fired guard this would
	// deadlock instead of returning.
	sctx := testSimCtx()
	completed := false

	RunEventNow(sctx, func(ctx EventCtx) {
		RunProcess(ctx, func(pc *ProcessCtx) {
			Parallel(pc, NoLinkage, []func(*ProcessCtx){
				func(cpc *ProcessCtx) {},
				func(cpc *ProcessCtx) {},
			})
			completed = true
		})
	})
	assert.True(t, completed, "expected Parallel to return when every child finishes synchronously")
}

func TestTimeoutBodyWinsWhenFastEnough(t *testing.T) {
	sctx := testSimCtx()
	var value int
	var ok bool

	RunEventNow(sctx, func(ctx EventCtx) {
		RunProcess(ctx, func(pc *ProcessCtx) {
			value, ok = Timeout(pc, 5, func(cpc *ProcessCtx) int {
				Hold(cpc, 1)
				return 7
			})
		})
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 1, Iteration: 1, Phase: -1})

	require.True(t, ok)
	assert.Equal(t, 7, value)
}

func TestTimeoutExpiresWhenBodyIsSlow(t *testing.T) {
	sctx := testSimCtx()
	var value int
	var ok bool

	RunEventNow(sctx, func(ctx EventCtx) {
		RunProcess(ctx, func(pc *ProcessCtx) {
			value, ok = Timeout(pc, 2, func(cpc *ProcessCtx) int {
				Hold(cpc, 5)
				return 7
			})
		})
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 2, Iteration: 2, Phase: -1})

	require.False(t, ok)
	assert.Equal(t, 0, value)
}
