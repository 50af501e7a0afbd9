package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GIVEN a bounded FIFO of capacity 3
// WHEN four EnqueueOrLost calls arrive before any Dequeue, then one
//
//	Dequeue, then one more EnqueueOrLost
//
// THEN exactly the fourth enqueue is lost, and the final count/lost_count
// match spec.md's scenario 1.
func TestFIFOBoundedLossyBehaviour(t *testing.T) {
	ctx := testEventCtx()
	q := NewFIFO[int](3)

	for i := 1; i <= 4; i++ {
		ok := q.EnqueueOrLost(ctx, i)
		if i <= 3 {
			assert.True(t, ok, "enqueue %d: expected success while under capacity", i)
		} else {
			assert.False(t, ok, "enqueue %d: expected loss once the buffer is full", i)
		}
	}
	assert.Equal(t, 3, q.Count())
	assert.Equal(t, 1, q.LostCount())

	_, ok := q.TryDequeue(ctx)
	require.True(t, ok, "expected an item to be available")
	assert.Equal(t, 2, q.Count())

	require.True(t, q.EnqueueOrLost(ctx, 99), "expected room for one more item after dequeue")
	assert.Equal(t, 3, q.Count())
	assert.Equal(t, 1, q.LostCount(), "lost_count should not grow on a successful enqueue")
}

func TestFIFOTryEnqueueDoesNotAffectLostCount(t *testing.T) {
	ctx := testEventCtx()
	q := NewFIFO[int](1)

	require.True(t, q.TryEnqueue(ctx, 1), "TryEnqueue into empty slot should succeed")
	assert.False(t, q.TryEnqueue(ctx, 2), "TryEnqueue into a full buffer should fail")
	assert.Equal(t, 0, q.LostCount(), "TryEnqueue must never affect LostCount")
}

func TestFIFOOrderingIsStrict(t *testing.T) {
	ctx := testEventCtx()
	q := NewFIFO[string](4)
	for _, v := range []string{"a", "b", "c"} {
		q.EnqueueOrLost(ctx, v)
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.TryDequeue(ctx)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}
