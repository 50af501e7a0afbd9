package sim

import (
	"github.com/sirupsen/logrus"
)

// DrainMode selects which due events a drain call should include relative
// to the dispatch point's time.
type DrainMode int

const (
	// CurrentEvents includes events scheduled at or before the point's time.
	CurrentEvents DrainMode = iota
	// EarlierEvents includes only events scheduled strictly before the point's time.
	EarlierEvents
	// CurrentEventsOrFromPast behaves like CurrentEvents but does not
	// require the point's time to be at or ahead of the queue's clock; it
	// is used internally by the Dynamics-to-Event bridge, where the
	// queue's clock may already have advanced past the point being read.
	CurrentEventsOrFromPast
	// EarlierEventsOrFromPast is the EarlierEvents analogue of CurrentEventsOrFromPast.
	EarlierEventsOrFromPast
)

func includesCurrent(mode DrainMode) bool {
	return mode == CurrentEvents || mode == CurrentEventsOrFromPast
}

func fromPast(mode DrainMode) bool {
	return mode == CurrentEventsOrFromPast || mode == EarlierEventsOrFromPast
}

// EventQueue is a time-ordered min-heap of deferred actions, draining them
// in monotonic-time order up to a dispatch point. current_time is
// monotone non-decreasing for the lifetime of the queue; busy guards
// against reentrant drains, coalescing a recursive Drain call into the
// outer one already in progress.
type EventQueue struct {
	specs       Specs
	heap        actionHeap
	busy        bool
	currentTime float64
	nextSeq     uint64
}

// NewEventQueue creates an empty EventQueue for a run built from specs.
func NewEventQueue(specs Specs) *EventQueue {
	return &EventQueue{
		specs:       specs,
		currentTime: specs.Start,
	}
}

// Len reports the number of pending actions.
func (q *EventQueue) Len() int { return q.heap.Len() }

// CurrentTime returns the queue's current simulated time.
func (q *EventQueue) CurrentTime() float64 { return q.currentTime }

// Enqueue schedules action to run at time t. t must be at or after the
// queue's current time; scheduling into the past is a fatal programmer
// error.
func (q *EventQueue) Enqueue(t float64, action func(Point)) {
	if t < q.currentTime {
		logrus.Panicf("eventqueue: cannot enqueue at time %v, current time is %v", t, q.currentTime)
	}
	q.nextSeq++
	q.heap.pushAction(&scheduledAction{time: t, seq: q.nextSeq, action: action})
}

// Drain dispatches all actions due at or before point's time, in
// monotonic time order, fabricating an off-grid dispatch Point (phase -1)
// for each. Drain is idempotent under reentry: a recursive call made from
// within an action's own execution returns immediately.
func (q *EventQueue) Drain(point Point) {
	q.drain(point, CurrentEvents)
}

// DrainSync requires point.Time to be at or after the queue's current
// time (a stale call is a fatal programmer error), then behaves like Drain.
func (q *EventQueue) DrainSync(point Point) {
	if point.Time < q.currentTime {
		logrus.Panicf("eventqueue: drain_sync called with point behind queue clock (%v < %v)", point.Time, q.currentTime)
	}
	q.Drain(point)
}

func (q *EventQueue) drain(point Point, mode DrainMode) {
	if q.busy {
		return
	}
	q.busy = true
	defer func() { q.busy = false }()

	for {
		top := q.heap.peek()
		if top == nil {
			return
		}
		due := top.time < point.Time
		if includesCurrent(mode) {
			due = top.time <= point.Time
		}
		if !due {
			return
		}
		a := q.heap.popAction()
		if !fromPast(mode) && a.time < q.currentTime {
			logrus.Panicf("eventqueue: popped action at time %v is less than current time %v", a.time, q.currentTime)
		}
		if a.time > q.currentTime {
			q.currentTime = a.time
		}
		dispatch := Point{
			Specs:     q.specs,
			Run:       point.Run,
			Time:      a.time,
			Iteration: iterationAt(q.specs, a.time),
			Phase:     -1,
		}
		a.action(dispatch)
	}
}
