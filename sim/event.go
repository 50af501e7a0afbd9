package sim

// EventCtx is the Event context: a Dynamics context pinned to event-queue
// semantics. Code running in an EventCtx executes only at the queue's
// current time; it may enqueue future events, trigger signals, and mutate
// Run-owned state. Because a Run exclusively owns exactly one EventQueue,
// EventCtx reaches it through Run rather than carrying a separate queue
// binding field.
type EventCtx struct {
	*DynCtx
}

// Event is an Event-context computation: it runs once, at the queue's
// current dispatch point, and returns a value.
type Event[T any] func(ctx EventCtx) T

// newEventCtx builds an EventCtx pinned at point.
func newEventCtx(sctx *SimCtx, point Point) EventCtx {
	return EventCtx{DynCtx: &DynCtx{SimCtx: sctx, Point: point}}
}

// Enqueue schedules action to run at time t against this context's Run.
func (e EventCtx) Enqueue(t float64, action func(Point)) {
	e.Run.Queue.Enqueue(t, action)
}

// DrainDynamicsToEvent is the Dynamics-to-Event bridge: it drains the
// run's queue up to dctx.Point under mode, then returns an EventCtx pinned
// at dctx.Point so the caller's event body can run with queue state fully
// caught up to that instant.
func DrainDynamicsToEvent(dctx DynCtx, mode DrainMode) EventCtx {
	dctx.Run.Queue.drain(dctx.Point, mode)
	return newEventCtx(dctx.SimCtx, dctx.Point)
}

// RunEventNow constructs an EventCtx pinned at the run's current queue
// time and runs body against it. Used by model code that needs to act in
// Event context without going through the process machinery (e.g.
// releasing a resource, triggering a signal).
func RunEventNow(sctx *SimCtx, body func(EventCtx)) {
	point := Point{
		Specs:     sctx.Run.Specs,
		Run:       sctx.Run,
		Time:      sctx.Run.Queue.CurrentTime(),
		Iteration: iterationAt(sctx.Run.Specs, sctx.Run.Queue.CurrentTime()),
		Phase:     -1,
	}
	body(newEventCtx(sctx, point))
}
