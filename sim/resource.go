package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Resource is a counting semaphore with a configurable wait discipline: up
// to count units are available at once (capped at maxCount, if set), and
// processes that Request one while none are free queue according to
// strategy until Release frees a unit for them.
type Resource struct {
	strategy StrategyTag
	waiters  strategyContainer[*resourceWaiter]
	count    int
	maxCount *int
	rng      *rand.Rand
	nextSeq  uint64
}

type resourceWaiter struct {
	pid  *ProcessID
	wake func()
}

// NewResource creates a Resource with count units initially available.
// maxCount, if non-nil, bounds how high Release may ever raise count; pass
// nil for an unbounded resource. rng is required only for the SIRO
// strategy.
func NewResource(strategy StrategyTag, count int, maxCount *int, rng *rand.Rand) *Resource {
	if maxCount != nil && count > *maxCount {
		logrus.Panicf("resource: initial count %d exceeds maxCount %d", count, *maxCount)
	}
	return &Resource{
		strategy: strategy,
		waiters:  newStrategyContainer[*resourceWaiter](strategy, rng),
		count:    count,
		maxCount: maxCount,
		rng:      rng,
	}
}

// Count returns the number of units currently available.
func (r *Resource) Count() int { return r.count }

// Request acquires one unit of r, suspending the calling process according
// to r's strategy if none is immediately available.
func Request(pc *ProcessCtx, r *Resource) {
	if r.strategy == StaticPriorities {
		logrus.Panicf("resource: StaticPriorities resource requires RequestWithPriority")
	}
	requestInto(pc, r, 0)
}

// RequestWithPriority acquires one unit of a StaticPriorities resource,
// queueing ahead of lower-priority (numerically larger) waiters if none is
// immediately available. Calling this on a resource built with any other
// strategy is a fatal programmer error.
func RequestWithPriority(pc *ProcessCtx, r *Resource, priority int) {
	if r.strategy != StaticPriorities {
		logrus.Panicf("resource: RequestWithPriority requires a StaticPriorities resource")
	}
	requestInto(pc, r, priority)
}

func requestInto(pc *ProcessCtx, r *Resource, priority int) {
	pid := pc.pid
	checkCancelled(pid)

	if r.count > 0 {
		r.count--
		return
	}

	r.nextSeq++
	seq := r.nextSeq
	woken := false
	waiter := &resourceWaiter{pid: pid}
	waiter.wake = func() {
		woken = true
		pid.wakeForCancel = nil
		pc.Run.Queue.Enqueue(pc.Run.Queue.CurrentTime(), func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	r.waiters.Push(orderedItem[*resourceWaiter]{value: waiter, seq: seq, priority: priority})

	pid.wakeForCancel = func(wctx EventCtx) {
		if !woken {
			r.waiters.Remove(seq)
		}
		wctx.Enqueue(wctx.Point.Time, func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	pid.fiber.suspend()
	pid.wakeForCancel = nil
	checkCancelled(pid)
}

// Release returns one unit of r. If a process is waiting, it is handed
// the unit directly (count is not incremented); otherwise count is
// incremented, capped at maxCount. Releasing past maxCount is a fatal
// programmer error, the same misuse class the specification treats as a
// defect in model code rather than a recoverable condition.
func Release(ctx EventCtx, r *Resource) {
	if item, ok := r.waiters.Pop(); ok {
		item.value.wake()
		return
	}
	r.count++
	if r.maxCount != nil && r.count > *r.maxCount {
		logrus.Panicf("resource: release exceeds maxCount %d", *r.maxCount)
	}
}

// TryRequestWithinEvent attempts to acquire one unit of r without
// suspending, returning false immediately if none is available.
func TryRequestWithinEvent(ctx EventCtx, r *Resource) bool {
	if r.count > 0 {
		r.count--
		return true
	}
	return false
}

// TryRequestWithinDynamics attempts to acquire one unit of r from Dynamics
// context, first draining the run's queue up to dctx.Point so the
// resource's state reflects every event due by then.
func TryRequestWithinDynamics(dctx DynCtx, r *Resource) bool {
	ctx := DrainDynamicsToEvent(dctx, CurrentEventsOrFromPast)
	return TryRequestWithinEvent(ctx, r)
}
