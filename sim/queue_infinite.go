package sim

import "math/rand"

// QueueItem pairs a stored value with the simulated time it was enqueued,
// so dequeue-side statistics can measure how long each item actually
// waited rather than relying on the caller to track that separately.
type QueueItem[T any] struct {
	Value    T
	StoredAt float64
}

// Queue is an unbounded multi-strategy store: items are held under
// storeStrategy and released to waiting consumers under outputStrategy,
// which may differ (e.g. store LCFS but serve waiting consumers FCFS).
// Dequeue follows a two-phase protocol — a consumer first registers its
// request, then is granted access to the store — so that
// dequeueRequested and dequeueExtracted can fire as genuinely distinct
// events even when an item is already available.
type Queue[T any] struct {
	storeStrategy, outputStrategy StrategyTag
	store                         strategyContainer[QueueItem[T]]
	outputRes                     *Resource
	inQueueWait, outputWait       *SampleStats
	enqueueStored                 *SignalSource[QueueItem[T]]
	dequeueRequested              *SignalSource[struct{}]
	dequeueExtracted              *SignalSource[QueueItem[T]]
	nextSeq                       uint64
}

// NewQueue creates an empty Queue. rng is required only when either
// strategy is SIRO.
func NewQueue[T any](storeStrategy, outputStrategy StrategyTag, rng *rand.Rand) *Queue[T] {
	return &Queue[T]{
		storeStrategy:    storeStrategy,
		outputStrategy:   outputStrategy,
		store:            newStrategyContainer[QueueItem[T]](storeStrategy, rng),
		outputRes:        NewResource(outputStrategy, 0, nil, rng),
		inQueueWait:      &SampleStats{},
		outputWait:       &SampleStats{},
		enqueueStored:    NewSignalSource[QueueItem[T]](),
		dequeueRequested: NewSignalSource[struct{}](),
		dequeueExtracted: NewSignalSource[QueueItem[T]](),
	}
}

// Count reports the number of items currently stored.
func (q *Queue[T]) Count() int { return q.store.Len() }

// EnqueueStoredSignal fires whenever an item is added to the store.
func (q *Queue[T]) EnqueueStoredSignal() *SignalSource[QueueItem[T]] { return q.enqueueStored }

// DequeueRequestedSignal fires when a consumer begins a Dequeue, before it
// has necessarily been granted an item.
func (q *Queue[T]) DequeueRequestedSignal() *SignalSource[struct{}] { return q.dequeueRequested }

// DequeueExtractedSignal fires once a Dequeue has actually removed an item
// from the store.
func (q *Queue[T]) DequeueExtractedSignal() *SignalSource[QueueItem[T]] { return q.dequeueExtracted }

// InQueueWaitStats summarizes how long items sat in the store before being
// extracted.
func (q *Queue[T]) InQueueWaitStats() *SampleStats { return q.inQueueWait }

// OutputWaitStats summarizes how long consumers waited for
// Request(outputRes) to be granted.
func (q *Queue[T]) OutputWaitStats() *SampleStats { return q.outputWait }

// Enqueue stores v immediately (the store itself never blocks a
// producer: only the output side has a wait discipline).
func (q *Queue[T]) Enqueue(ctx EventCtx, v T) {
	q.nextSeq++
	item := QueueItem[T]{Value: v, StoredAt: ctx.Point.Time}
	q.store.Push(orderedItem[QueueItem[T]]{value: item, seq: q.nextSeq})
	Release(ctx, q.outputRes)
	q.enqueueStored.Trigger(item)
}

// Dequeue removes and returns the next item under storeStrategy,
// suspending the calling process if none is currently available; waiting
// consumers are served in outputStrategy order.
func (q *Queue[T]) Dequeue(pc *ProcessCtx) T {
	q.dequeueRequested.Trigger(struct{}{})
	requestStart := pc.Point.Time
	Request(pc, q.outputRes)
	q.outputWait.Add(pc.Point.Time - requestStart)

	stored, ok := q.store.Pop()
	if !ok {
		panic("queue: output resource granted with empty store, invariant violated")
	}
	q.inQueueWait.Add(pc.Point.Time - stored.value.StoredAt)
	q.dequeueExtracted.Trigger(stored.value)
	return stored.value.Value
}

// TryDequeue removes and returns the next item without suspending,
// returning false if none is available.
func (q *Queue[T]) TryDequeue(ctx EventCtx) (T, bool) {
	q.dequeueRequested.Trigger(struct{}{})
	if !TryRequestWithinEvent(ctx, q.outputRes) {
		var zero T
		return zero, false
	}
	stored, ok := q.store.Pop()
	if !ok {
		panic("queue: output resource granted with empty store, invariant violated")
	}
	q.inQueueWait.Add(ctx.Point.Time - stored.value.StoredAt)
	q.dequeueExtracted.Trigger(stored.value)
	return stored.value.Value, true
}
