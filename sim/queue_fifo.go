package sim

import "github.com/sirupsen/logrus"

// FIFO is a bounded, strictly first-in-first-out buffer between producer
// and consumer processes. Enqueue and Dequeue suspend the calling process
// when the buffer is full or empty respectively; the resource semantics
// backing that suspension are built from two Resources (free slots and
// stored items) rather than a bespoke wait list, the same way the
// specification's underlying model composes a bounded queue out of a
// counting resource on each side.
type FIFO[T any] struct {
	buf               []T
	capacity          int
	start, count      int
	lostCount         int
	readRes, writeRes *Resource
}

// NewFIFO creates an empty bounded FIFO of the given capacity.
func NewFIFO[T any](capacity int) *FIFO[T] {
	if capacity <= 0 {
		logrus.Panicf("fifo: capacity must be > 0, got %d", capacity)
	}
	free := capacity
	return &FIFO[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
		readRes:  NewResource(FCFS, 0, nil, nil),
		writeRes: NewResource(FCFS, free, &capacity, nil),
	}
}

func (q *FIFO[T]) push(v T) {
	idx := (q.start + q.count) % q.capacity
	q.buf[idx] = v
	q.count++
}

func (q *FIFO[T]) pop() T {
	v := q.buf[q.start]
	q.start = (q.start + 1) % q.capacity
	q.count--
	return v
}

// LostCount reports how many EnqueueOrLost calls were dropped because the
// buffer was full.
func (q *FIFO[T]) LostCount() int { return q.lostCount }

// Count reports the number of items currently buffered.
func (q *FIFO[T]) Count() int { return q.count }

// Enqueue suspends the calling process until room is available, then
// stores v.
func (q *FIFO[T]) Enqueue(pc *ProcessCtx, v T) {
	Request(pc, q.writeRes)
	q.push(v)
	Release(pc.AsEventCtx(), q.readRes)
}

// Dequeue suspends the calling process until an item is available, then
// removes and returns it.
func (q *FIFO[T]) Dequeue(pc *ProcessCtx) T {
	Request(pc, q.readRes)
	v := q.pop()
	Release(pc.AsEventCtx(), q.writeRes)
	return v
}

// EnqueueOrLost stores v if there is room, or increments LostCount and
// returns false if the buffer is full. Unlike TryEnqueue, a failed call
// here is recorded: this is the tier-2 "lossy channel" entry point the
// specification distinguishes from plain non-blocking Try operations.
func (q *FIFO[T]) EnqueueOrLost(ctx EventCtx, v T) bool {
	if !TryRequestWithinEvent(ctx, q.writeRes) {
		q.lostCount++
		return false
	}
	q.push(v)
	Release(ctx, q.readRes)
	return true
}

// TryEnqueue stores v if there is room, returning false otherwise without
// affecting LostCount.
func (q *FIFO[T]) TryEnqueue(ctx EventCtx, v T) bool {
	if !TryRequestWithinEvent(ctx, q.writeRes) {
		return false
	}
	q.push(v)
	Release(ctx, q.readRes)
	return true
}

// TryDequeue removes and returns the head item if one is available,
// returning false otherwise.
func (q *FIFO[T]) TryDequeue(ctx EventCtx) (T, bool) {
	if !TryRequestWithinEvent(ctx, q.readRes) {
		var zero T
		return zero, false
	}
	v := q.pop()
	Release(ctx, q.writeRes)
	return v, true
}
