package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// fiber is the stackful-coroutine mechanism backing a Process: a single
// goroutine whose execution strictly alternates with its driver across an
// unbuffered channel handshake, so only one side is ever runnable at a
// time. This realizes the specification's "(b) stackful fibers" option
// for the continuation-passing Process machinery using Go's own
// goroutines — idiomatic for Go, and still single-threaded in effect
// because Resume never returns until the fiber has yielded back.
type fiber struct {
	resumeCh chan struct{}
	yieldCh  chan struct{}
	done     bool
}

func newFiber(body func()) *fiber {
	f := &fiber{resumeCh: make(chan struct{}), yieldCh: make(chan struct{})}
	go func() {
		<-f.resumeCh
		body()
		f.done = true
		f.yieldCh <- struct{}{}
	}()
	return f
}

// Resume runs the fiber until it next suspends or finishes. No-op if the
// fiber has already finished.
func (f *fiber) Resume() {
	if f.done {
		return
	}
	f.resumeCh <- struct{}{}
	<-f.yieldCh
}

// suspend yields control back to whoever called Resume, and blocks until
// Resume is called again.
func (f *fiber) suspend() {
	f.yieldCh <- struct{}{}
	<-f.resumeCh
}

// cancelSentinel is the panic value suspension points raise to unwind a
// cancelled process's continuation. It is never a user-visible error: a
// Catch handler installed via ProcessCtx.Try must re-raise it rather than
// treat it as a caught exception.
type cancelSentinel struct{}

// Linkage selects how a child process's cancellation is tied to its
// parent's.
type Linkage int

const (
	// NoLinkage: cancelling either leaves the other running.
	NoLinkage Linkage = iota
	// CancelTogether: cancelling either cancels the other. Finishing
	// normally has no effect on the other.
	CancelTogether
	// CancelChildAfterParent: cancelling the parent cancels the child; the
	// parent finishing, or the child finishing or being cancelled, has no
	// effect on the other.
	CancelChildAfterParent
)

// ProcessID is a handle to a Process: its lifecycle flags and the signal
// fired on cancellation. Creating a Process (via RunProcess, SpawnProcess,
// or EnqueueProcess) does not by itself run any of the process's body;
// the fiber only steps forward once one of those entry points performs
// the first Resume.
type ProcessID struct {
	run          *Run
	fiber        *fiber
	cancelled    bool
	started      bool
	finished     bool
	failed       bool
	failErr      error
	interrupted  bool
	cancelSignal *SignalSource[struct{}]
	finishSignal *SignalSource[struct{}]

	// wakeForCancel, when non-nil, is the cleanup+rewake hook installed by
	// whichever suspension primitive currently holds this process
	// suspended. Cancel calls it (and clears it) to force an immediate
	// wake along the cancel branch.
	wakeForCancel func(EventCtx)
	// reactivateHook, when non-nil, is set only while Passivate holds the
	// process suspended; Reactivate calls it (and clears it).
	reactivateHook func(EventCtx)
	// interruptHook, when non-nil, is set only while Hold holds the
	// process suspended; Interrupt calls it (and clears it).
	interruptHook func(EventCtx)
}

// Cancelled reports whether pid has been cancelled (regardless of whether
// the cancellation has finished unwinding the process yet).
func (pid *ProcessID) Cancelled() bool { return pid.cancelled }

// Started reports whether the process has begun running.
func (pid *ProcessID) Started() bool { return pid.started }

// Finished reports whether the process has reached a terminal state
// (Finished, Cancelled, or Failed).
func (pid *ProcessID) Finished() bool { return pid.finished }

// Failed reports whether the process terminated with an uncaught
// exception (only possible for catch-enabled processes; a non-catch
// process that raises aborts the run instead of reaching this state).
func (pid *ProcessID) Failed() bool { return pid.failed }

// Err returns the error a failed process terminated with, or nil.
func (pid *ProcessID) Err() error { return pid.failErr }

// Interrupted reports whether the most recently completed hold was cut
// short by Interrupt.
func (pid *ProcessID) Interrupted() bool { return pid.interrupted }

// CancelSignal exposes the signal triggered when this process is cancelled.
func (pid *ProcessID) CancelSignal() *SignalSource[struct{}] { return pid.cancelSignal }

// FinishSignal exposes the signal triggered exactly once, when this
// process reaches any terminal state (finished, cancelled, or failed).
func (pid *ProcessID) FinishSignal() *SignalSource[struct{}] { return pid.finishSignal }

// ProcessCtx is the Process context: an Event context refined with the
// running process's continuation state (its ProcessID and whether it may
// install exception handlers).
type ProcessCtx struct {
	*EventCtx
	pid          *ProcessID
	catchEnabled bool
}

// PID returns the context's own process handle.
func (pc *ProcessCtx) PID() *ProcessID { return pc.pid }

// AsEventCtx extracts the Event context this process is currently running
// in, for passing to Event-level operations like Release.
func (pc *ProcessCtx) AsEventCtx() EventCtx { return *pc.EventCtx }

// checkCancelled raises cancelSentinel if the process has been cancelled.
// Called at the start of every suspension point and immediately after
// waking from one, per the specification's "every suspension point checks
// the flag before committing" rule.
func checkCancelled(pid *ProcessID) {
	if pid.cancelled {
		panic(cancelSentinel{})
	}
}

// ProcessOption configures a process at creation time.
type ProcessOption func(*processConfig)

type processConfig struct {
	catchEnabled bool
	onCancel     func()
	linkage      Linkage
	parent       *ProcessID
}

// WithCatch marks the process as catch-enabled: only such processes may
// install exception handlers via ProcessCtx.Try.
func WithCatch() ProcessOption {
	return func(c *processConfig) { c.catchEnabled = true }
}

// WithOnCancel registers a callback run synchronously when the process's
// cancellation unwinds it.
func WithOnCancel(f func()) ProcessOption {
	return func(c *processConfig) { c.onCancel = f }
}

func buildConfig(opts []ProcessOption) processConfig {
	var c processConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

// newProcess allocates a ProcessID and its fiber, wrapping body with the
// three-tier error handling the specification requires: cancellation
// unwinds silently (running onCancel), a catch-enabled process absorbs an
// uncaught user exception onto its own handle, and a non-catch process
// that raises aborts the run.
func newProcess(run *Run, cfg processConfig, body func(*ProcessCtx)) (*ProcessID, *ProcessCtx) {
	pid := &ProcessID{run: run, cancelSignal: NewSignalSource[struct{}](), finishSignal: NewSignalSource[struct{}]()}
	dctx := &DynCtx{SimCtx: &SimCtx{Run: run}, Point: run.startPoint()}
	ectx := &EventCtx{DynCtx: dctx}
	pc := &ProcessCtx{EventCtx: ectx, pid: pid, catchEnabled: cfg.catchEnabled}

	pid.fiber = newFiber(func() {
		defer func() {
			r := recover()
			switch {
			case r == nil:
				pid.finished = true
			case isCancelSentinel(r):
				pid.cancelled = true
				pid.finished = true
				if cfg.onCancel != nil {
					cfg.onCancel()
				}
			default:
				err := toError(r)
				if cfg.catchEnabled {
					pid.failed = true
					pid.failErr = err
					pid.finished = true
				} else {
					logrus.Panicf("process: unhandled exception in non-catch process: %v", err)
				}
			}
			if pid.finished {
				pid.finishSignal.Trigger(struct{}{})
			}
		}()
		body(pc)
	})
	return pid, pc
}

func isCancelSentinel(r any) bool {
	_, ok := r.(cancelSentinel)
	return ok
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// RunProcess creates a process and starts it immediately, at ctx's
// current time, running synchronously until the body's first suspension
// point or completion.
func RunProcess(ctx EventCtx, body func(*ProcessCtx), opts ...ProcessOption) *ProcessID {
	cfg := buildConfig(opts)
	pid, pc := newProcess(ctx.Run, cfg, body)
	pc.Point = ctx.Point
	pid.started = true
	pid.fiber.Resume()
	return pid
}

// EnqueueProcess schedules a process to start at time t.
func EnqueueProcess(ctx EventCtx, t float64, body func(*ProcessCtx), opts ...ProcessOption) *ProcessID {
	cfg := buildConfig(opts)
	pid, pc := newProcess(ctx.Run, cfg, body)
	ctx.Enqueue(t, func(p Point) {
		pc.Point = p
		pid.started = true
		pid.fiber.Resume()
	})
	return pid
}

// SpawnProcess creates and starts a process at ctx's current time, linking
// its cancellation to parent per linkage.
func SpawnProcess(ctx EventCtx, linkage Linkage, parent *ProcessID, body func(*ProcessCtx), opts ...ProcessOption) *ProcessID {
	child := RunProcess(ctx, body, opts...)
	switch linkage {
	case CancelTogether:
		child.CancelSignal().Subscribe(func(struct{}) {
			if !parent.finished {
				Cancel(ctx, parent)
			}
		})
		parent.CancelSignal().Subscribe(func(struct{}) {
			if !child.finished {
				Cancel(ctx, child)
			}
		})
	case CancelChildAfterParent:
		parent.CancelSignal().Subscribe(func(struct{}) {
			if !child.finished {
				Cancel(ctx, child)
			}
		})
	case NoLinkage:
	}
	return child
}

// Hold suspends the current process, scheduling an event at now+dt that
// resumes its continuation. dt must be >= 0. If the process is cancelled
// while held, the scheduled resumption becomes a no-op and cancellation
// unwinds immediately instead.
func Hold(pc *ProcessCtx, dt float64) {
	if dt < 0 {
		logrus.Panicf("process: hold requires dt >= 0, got %v", dt)
	}
	pid := pc.pid
	checkCancelled(pid)

	now := pc.Point.Time
	resumeAt := now + dt
	cancelledEvent := false
	pc.Enqueue(resumeAt, func(p Point) {
		if cancelledEvent {
			return
		}
		pid.interruptHook = nil
		pid.wakeForCancel = nil
		pc.Point = p
		pid.fiber.Resume()
	})
	pid.interrupted = false
	pid.interruptHook = func(wctx EventCtx) {
		cancelledEvent = true
		pid.interrupted = true
		pid.wakeForCancel = nil
		wctx.Enqueue(wctx.Point.Time, func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	pid.wakeForCancel = func(wctx EventCtx) {
		cancelledEvent = true
		pid.interruptHook = nil
		wctx.Enqueue(wctx.Point.Time, func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	pid.fiber.suspend()
	pid.interruptHook = nil
	pid.wakeForCancel = nil
	checkCancelled(pid)
}

// Passivate suspends the current process indefinitely; only a Reactivate
// from another party resumes it. Passivating an already-passive process
// is a fatal programmer error.
func Passivate(pc *ProcessCtx) {
	pid := pc.pid
	checkCancelled(pid)
	if pid.reactivateHook != nil {
		logrus.Panicf("process: double passivate")
	}
	pid.reactivateHook = func(wctx EventCtx) {
		pid.wakeForCancel = nil
		wctx.Enqueue(wctx.Point.Time, func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	pid.wakeForCancel = func(wctx EventCtx) {
		pid.reactivateHook = nil
		wctx.Enqueue(wctx.Point.Time, func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	pid.fiber.suspend()
	pid.reactivateHook = nil
	pid.wakeForCancel = nil
	checkCancelled(pid)
}

// Reactivate resumes a passive process at the current time. No-op on a
// process that is not currently passive (including a finished process).
func Reactivate(ctx EventCtx, pid *ProcessID) {
	if pid.reactivateHook == nil {
		return
	}
	hook := pid.reactivateHook
	pid.reactivateHook = nil
	hook(ctx)
}

// Interrupt cuts a held process's wait short: the pending resumption
// event becomes a no-op, and the process resumes immediately with
// Interrupted(pid) true. No-op on a process that is not currently held.
func Interrupt(ctx EventCtx, pid *ProcessID) {
	if pid.interruptHook == nil {
		return
	}
	hook := pid.interruptHook
	pid.interruptHook = nil
	hook(ctx)
}

// Cancel sets pid's cancel flag and triggers its cancel signal. If the
// process is currently suspended at a cooperative boundary, it is woken
// immediately along the cancel branch; otherwise the flag takes effect
// the next time the process reaches one.
func Cancel(ctx EventCtx, pid *ProcessID) {
	if pid.finished || pid.cancelled {
		return
	}
	pid.cancelled = true
	pid.cancelSignal.Trigger(struct{}{})
	if pid.wakeForCancel != nil {
		wake := pid.wakeForCancel
		pid.wakeForCancel = nil
		pid.interruptHook = nil
		pid.reactivateHook = nil
		wake(ctx)
	} else if !pid.started {
		pid.finished = true
	}
}

// Await suspends the current process until s fires, returning the fired
// value. The subscription is disposed the moment it fires (or the process
// is cancelled), so later firings never resume a process more than once.
func Await[T any](pc *ProcessCtx, s *SignalSource[T]) T {
	pid := pc.pid
	checkCancelled(pid)

	var result T
	var sub *Subscription[T]
	sub = s.Subscribe(func(v T) {
		result = v
		sub.Dispose()
		pid.wakeForCancel = nil
		pc.Run.Queue.Enqueue(pc.Run.Queue.CurrentTime(), func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	})
	pid.wakeForCancel = func(wctx EventCtx) {
		sub.Dispose()
		wctx.Enqueue(wctx.Point.Time, func(p Point) {
			pc.Point = p
			pid.fiber.Resume()
		})
	}
	pid.fiber.suspend()
	pid.wakeForCancel = nil
	checkCancelled(pid)
	return result
}

// Timeout runs body as a child process racing a dt-duration timer;
// whichever finishes first wins and the other is cancelled. Returns the
// body's result and true if body won, or the zero value and false if the
// timer won.
func Timeout[T any](pc *ProcessCtx, dt float64, body func(*ProcessCtx) T) (T, bool) {
	type outcome struct {
		value   T
		expired bool
	}
	done := NewSignalSource[outcome]()
	var fired bool
	var result outcome

	bodyPID := SpawnProcess(pc.AsEventCtx(), NoLinkage, pc.pid, func(cpc *ProcessCtx) {
		v := body(cpc)
		if !fired {
			fired = true
			result = outcome{value: v}
			done.Trigger(result)
		}
	})
	timerPID := SpawnProcess(pc.AsEventCtx(), NoLinkage, pc.pid, func(cpc *ProcessCtx) {
		Hold(cpc, dt)
		if !fired {
			fired = true
			result = outcome{expired: true}
			done.Trigger(result)
		}
	})

	if !fired {
		result = Await(pc, done)
	}
	if result.expired {
		Cancel(pc.AsEventCtx(), bodyPID)
	} else {
		Cancel(pc.AsEventCtx(), timerPID)
	}
	return result.value, !result.expired
}

// Parallel starts every process in bodies, each cancel-linked to the
// calling process via linkage, and suspends the caller until all of them
// finish. If any child raises, the first such exception (in the order
// children finish) is propagated after cancelling the remaining siblings.
func Parallel(pc *ProcessCtx, linkage Linkage, bodies []func(*ProcessCtx)) error {
	if len(bodies) == 0 {
		return nil
	}
	remaining := len(bodies)
	allDone := NewSignalSource[struct{}]()
	var firstErr error
	done := false
	children := make([]*ProcessID, len(bodies))

	for i, body := range bodies {
		i, body := i, body
		children[i] = SpawnProcess(pc.AsEventCtx(), linkage, pc.pid, func(cpc *ProcessCtx) {
			body(cpc)
		}, WithCatch())
	}
	for _, child := range children {
		child := child
		watchChildCompletion(pc, child, func() {
			if child.Failed() && firstErr == nil {
				firstErr = child.Err()
				for _, sibling := range children {
					if sibling != child {
						Cancel(pc.AsEventCtx(), sibling)
					}
				}
			}
			remaining--
			if remaining == 0 {
				done = true
				allDone.Trigger(struct{}{})
			}
		})
	}
	if !done {
		Await(pc, allDone)
	}
	return firstErr
}

// watchChildCompletion invokes onDone exactly once, when child reaches a
// terminal state. Every process triggers its own FinishSignal the moment
// it finishes, cancels, or fails, so Parallel never needs to poll.
func watchChildCompletion(pc *ProcessCtx, child *ProcessID, onDone func()) {
	if child.Finished() {
		onDone()
		return
	}
	var sub *Subscription[struct{}]
	sub = child.FinishSignal().Subscribe(func(struct{}) {
		sub.Dispose()
		onDone()
	})
}

// Try runs body, routing any exception it raises to onErr instead of
// letting it propagate. Only a catch-enabled process may call Try;
// attempting to do so on a non-catch process is a fatal programmer error,
// a guardrail against silently swallowed exceptions on the hot path.
// Cancellation is never caught here: a cancelSentinel panic is always
// re-raised so cancellation still unwinds to the process's own handler.
// Structural cleanup ("finally") needs no dedicated primitive: an
// ordinary Go `defer` inside the process body already runs on every exit
// path, including cancellation's panic-based unwind.
func (pc *ProcessCtx) Try(body func(), onErr func(error)) {
	if !pc.catchEnabled {
		logrus.Panicf("process: Try called on a process that was not created with catch enabled")
	}
	defer func() {
		if r := recover(); r != nil {
			if isCancelSentinel(r) {
				panic(r)
			}
			onErr(toError(r))
		}
	}()
	body()
}
