package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GIVEN an infinite FCFS queue with a consumer that starts dequeuing at
//
//	t=0 before any item exists
//
// WHEN an item is enqueued at t=5
// THEN the consumer receives it at t=5, with output-wait == 5 and
//
//	in-queue wait == 0, matching spec.md's scenario 2.
func TestQueueTwoPhaseDequeueStatistics(t *testing.T) {
	sctx := testSimCtx()
	q := NewQueue[string](FCFS, FCFS, nil)

	var received string
	var receivedAt float64

	RunEventNow(sctx, func(ctx EventCtx) {
		RunProcess(ctx, func(pc *ProcessCtx) {
			received = q.Dequeue(pc)
			receivedAt = pc.Point.Time
		})
	})

	sctx.Run.Queue.Enqueue(5, func(p Point) {
		ectx := newEventCtx(sctx, p)
		q.Enqueue(ectx, "X")
	})
	sctx.Run.Queue.Drain(Point{Specs: sctx.Run.Specs, Run: sctx.Run, Time: 5, Iteration: 5, Phase: -1})

	require.Equal(t, "X", received)
	assert.Equal(t, 5.0, receivedAt)
	assert.Equal(t, 1, q.OutputWaitStats().Count())
	assert.Equal(t, 5.0, q.OutputWaitStats().Mean())
	assert.Equal(t, 1, q.InQueueWaitStats().Count())
	assert.Equal(t, 0.0, q.InQueueWaitStats().Mean())
}

func TestQueueSizeConsistency(t *testing.T) {
	ctx := testEventCtx()
	q := NewQueue[int](FCFS, FCFS, nil)

	for i := 0; i < 5; i++ {
		q.Enqueue(ctx, i)
	}
	assert.Equal(t, 5, q.Count())
	for i := 0; i < 3; i++ {
		_, ok := q.TryDequeue(ctx)
		require.True(t, ok, "dequeue %d: expected an item", i)
	}
	assert.Equal(t, 2, q.Count())
}

func TestQueuePreservesFCFSOrder(t *testing.T) {
	ctx := testEventCtx()
	q := NewQueue[int](FCFS, FCFS, nil)
	for i := 0; i < 4; i++ {
		q.Enqueue(ctx, i)
	}
	for i := 0; i < 4; i++ {
		got, ok := q.TryDequeue(ctx)
		require.True(t, ok)
		assert.Equal(t, i, got)
	}
}
