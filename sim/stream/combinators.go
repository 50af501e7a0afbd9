package stream

import (
	sim "github.com/cpehle/aivika/sim"
	"github.com/sirupsen/logrus"
)

// Map transforms every element of s with a pure function.
func Map[A, B any](s Stream[A], f func(A) B) Stream[B] {
	if s == nil {
		return nil
	}
	return func(pc *sim.ProcessCtx) (B, Stream[B]) {
		v, rest := s(pc)
		return f(v), Map(rest, f)
	}
}

// MapProcess transforms every element of s with a function that may
// itself suspend the driving process (hold, request a resource, await a
// signal) before producing its result.
func MapProcess[A, B any](s Stream[A], f func(*sim.ProcessCtx, A) B) Stream[B] {
	if s == nil {
		return nil
	}
	return func(pc *sim.ProcessCtx) (B, Stream[B]) {
		v, rest := s(pc)
		return f(pc, v), MapProcess(rest, f)
	}
}

// Filter drives s until pred accepts an element, discarding every
// element pred rejects along the way.
func Filter[A any](s Stream[A], pred func(A) bool) Stream[A] {
	if s == nil {
		return nil
	}
	return func(pc *sim.ProcessCtx) (A, Stream[A]) {
		for {
			v, rest := s(pc)
			if rest == nil && !pred(v) {
				var zero A
				return zero, nil
			}
			if pred(v) {
				return v, Filter(rest, pred)
			}
			s = rest
			if s == nil {
				var zero A
				return zero, nil
			}
		}
	}
}

// FilterProcess is Filter with a predicate that may itself suspend the
// driving process.
func FilterProcess[A any](s Stream[A], pred func(*sim.ProcessCtx, A) bool) Stream[A] {
	if s == nil {
		return nil
	}
	return func(pc *sim.ProcessCtx) (A, Stream[A]) {
		for {
			v, rest := s(pc)
			if pred(pc, v) {
				return v, FilterProcess(rest, pred)
			}
			s = rest
			if s == nil {
				var zero A
				return zero, nil
			}
		}
	}
}

// ZipSeq pulls one element from a, then one from b, each step, pairing
// them. It is exhausted as soon as either input is.
func ZipSeq[A, B any](a Stream[A], b Stream[B]) Stream[Pair[A, B]] {
	if a == nil || b == nil {
		return nil
	}
	return func(pc *sim.ProcessCtx) (Pair[A, B], Stream[Pair[A, B]]) {
		av, aRest := a(pc)
		bv, bRest := b(pc)
		return Pair[A, B]{First: av, Second: bv}, ZipSeq(aRest, bRest)
	}
}

// ZipParallel pulls one element each from a and b concurrently, via
// sim.Parallel, pairing them once both are ready. Unlike ZipSeq, the two
// pulls may suspend independently without serializing behind each other.
func ZipParallel[A, B any](a Stream[A], b Stream[B]) Stream[Pair[A, B]] {
	if a == nil || b == nil {
		return nil
	}
	return func(pc *sim.ProcessCtx) (Pair[A, B], Stream[Pair[A, B]]) {
		var av A
		var bv B
		var aRest Stream[A]
		var bRest Stream[B]
		sim.Parallel(pc, sim.NoLinkage, []func(*sim.ProcessCtx){
			func(cpc *sim.ProcessCtx) { av, aRest = a(cpc) },
			func(cpc *sim.ProcessCtx) { bv, bRest = b(cpc) },
		})
		return Pair[A, B]{First: av, Second: bv}, ZipParallel(aRest, bRest)
	}
}

// concatItem tags a value with the index of the writer process that
// produced it, so Concat's reader can release the one writer that is
// allowed to advance past its one-slot handoff.
type concatItem[A any] struct {
	value  A
	writer int
}

// Concat spawns one writer process per input in ss, each feeding its
// items through a single one-slot handoff (a per-writer gate Resource
// that only ever admits one in-flight item) into a shared Queue stored
// under strategy. The returned Stream pulls from that shared Queue, so
// items surface in the order they arrive under strategy rather than in
// strict round-robin or strict sequential order — FCFS recovers arrival
// order and LCFS serves the latest arrival first. Items carry no priority
// of their own, so a StaticPriorities store also yields arrival order.
func Concat[A any](pc *sim.ProcessCtx, strategy sim.StrategyTag, ss []Stream[A]) Stream[A] {
	n := len(ss)
	if n == 0 {
		return nil
	}

	q := sim.NewQueue[concatItem[A]](strategy, sim.FCFS, nil)
	gates := make([]*sim.Resource, n)
	for i := range gates {
		one := 1
		gates[i] = sim.NewResource(sim.FCFS, 1, &one, nil)
	}

	for i, s := range ss {
		i, s := i, s
		sim.SpawnProcess(pc.AsEventCtx(), sim.NoLinkage, pc.PID(), func(cpc *sim.ProcessCtx) {
			for s != nil {
				sim.Request(cpc, gates[i])
				var v A
				v, s = s(cpc)
				q.Enqueue(cpc.AsEventCtx(), concatItem[A]{value: v, writer: i})
			}
		})
	}

	var self Stream[A]
	self = func(cpc *sim.ProcessCtx) (A, Stream[A]) {
		it := q.Dequeue(cpc)
		sim.Release(cpc.AsEventCtx(), gates[it.writer])
		return it.value, self
	}
	return self
}

// Merge interleaves a and b under strategy; it is exactly
// Concat(pc, strategy, []Stream[A]{a, b}), the identity the
// specification states directly. Callers wanting the common case pass
// sim.FCFS.
func Merge[A any](pc *sim.ProcessCtx, strategy sim.StrategyTag, a, b Stream[A]) Stream[A] {
	return Concat(pc, strategy, []Stream[A]{a, b})
}

// Split shares a single read cursor over s among n consumer processes,
// guarded by a 1-capacity Resource under strategy: each of the n returned
// Streams requests that gate before advancing the shared cursor, so only
// one consumer ever pulls from s at a time and the strategy's wait
// discipline (FCFS gives round-robin fairness across the n consumers)
// decides who goes next when more than one is waiting.
func Split[A any](pc *sim.ProcessCtx, strategy sim.StrategyTag, n int, s Stream[A]) []Stream[A] {
	if n <= 0 {
		logrus.Panicf("stream: split requires n > 0, got %d", n)
	}

	cursor := s
	one := 1
	gate := sim.NewResource(strategy, 1, &one, nil)
	pull := func(cpc *sim.ProcessCtx) (A, bool) {
		if cursor == nil {
			var zero A
			return zero, false
		}
		var v A
		v, cursor = cursor(cpc)
		return v, true
	}

	outs := make([]Stream[A], n)
	for i := 0; i < n; i++ {
		var self Stream[A]
		self = func(cpc *sim.ProcessCtx) (A, Stream[A]) {
			sim.Request(cpc, gate)
			v, ok := pull(cpc)
			sim.Release(cpc.AsEventCtx(), gate)
			if !ok {
				var zero A
				return zero, nil
			}
			return v, self
		}
		outs[i] = self
	}
	return outs
}

// ParallelProcess fans in across len(procs) processors: it splits in into
// that many substreams under splitStrategy (see Split), runs each
// processor over its own substream, and concatenates their outputs under
// mergeStrategy (see Concat) into a single downstream Stream. This is the
// parallel processor combinator the specification describes: split by a
// strategy, run N processors on the N substreams, concatenate the results
// under another strategy.
func ParallelProcess[A, B any](pc *sim.ProcessCtx, splitStrategy sim.StrategyTag, procs []Processor[A, B], mergeStrategy sim.StrategyTag, in Stream[A]) Stream[B] {
	subs := Split(pc, splitStrategy, len(procs), in)
	outs := make([]Stream[B], len(procs))
	for i, p := range procs {
		outs[i] = Run(p, subs[i])
	}
	return Concat(pc, mergeStrategy, outs)
}

// Prefetch spawns a background process that continuously pulls s into a
// bounded buffer of the given capacity, returning a Stream backed by
// that buffer. Consumers of the returned Stream never wait on whatever
// upstream latency produced s's elements, as long as the buffer stays
// non-empty.
func Prefetch[A any](pc *sim.ProcessCtx, s Stream[A], capacity int) Stream[A] {
	buf := sim.NewFIFO[A](capacity)
	sim.SpawnProcess(pc.AsEventCtx(), sim.NoLinkage, pc.PID(), func(cpc *sim.ProcessCtx) {
		for s != nil {
			var v A
			v, s = s(cpc)
			buf.Enqueue(cpc, v)
		}
	})
	var self Stream[A]
	self = func(cpc *sim.ProcessCtx) (A, Stream[A]) {
		return buf.Dequeue(cpc), self
	}
	return self
}

// memoLog is the shared, append-only record backing every replay Stream
// Memo produces: only the first consumer to reach a given position
// actually drives the underlying source; everyone else reads the
// recorded value. Safe without locking because the kernel's cooperative
// scheduling never runs two processes' code concurrently.
type memoLog[T any] struct {
	log    []T
	source Stream[T]
	done   bool
}

// Memo wraps s so that it can be driven independently by multiple
// consumers — e.g. once directly and once through Prefetch — while its
// side effects (including time advancement) happen only once per element,
// on whichever consumer reaches that position first. Returns a factory
// producing a fresh replay handle each call.
func Memo[T any](s Stream[T]) func() Stream[T] {
	state := &memoLog[T]{source: s}
	var replay func(i int) Stream[T]
	replay = func(i int) Stream[T] {
		return func(pc *sim.ProcessCtx) (T, Stream[T]) {
			if i < len(state.log) {
				return state.log[i], replay(i + 1)
			}
			if state.done {
				var zero T
				return zero, nil
			}
			v, rest := state.source(pc)
			state.log = append(state.log, v)
			state.source = rest
			if rest == nil {
				state.done = true
			}
			return v, replay(i + 1)
		}
	}
	return func() Stream[T] { return replay(0) }
}

// SignalToStream spawns a background process that subscribes to s exactly
// once and enqueues every triggered value into an FCFS Queue; the returned
// Stream dequeues from that Queue. Subscribing once rather than re-Await-ing
// per pull means a firing that lands while nothing is pulling is buffered,
// not lost.
func SignalToStream[T any](pc *sim.ProcessCtx, s *sim.SignalSource[T]) Stream[T] {
	q := sim.NewQueue[T](sim.FCFS, sim.FCFS, nil)
	sim.SpawnProcess(pc.AsEventCtx(), sim.NoLinkage, pc.PID(), func(cpc *sim.ProcessCtx) {
		s.Subscribe(func(v T) {
			sim.RunEventNow(cpc.SimCtx, func(ctx sim.EventCtx) { q.Enqueue(ctx, v) })
		})
	})
	return FromQueue(q)
}

// StreamToSignal starts a background process that continuously pulls s
// and triggers the returned SignalSource with each value. The process is
// scheduled at the current time rather than run in place, so the caller
// can subscribe to the returned signal before the first value fires.
func StreamToSignal[T any](pc *sim.ProcessCtx, s Stream[T]) *sim.SignalSource[T] {
	out := sim.NewSignalSource[T]()
	sim.EnqueueProcess(pc.AsEventCtx(), pc.Point.Time, func(cpc *sim.ProcessCtx) {
		for s != nil {
			var v T
			v, s = s(cpc)
			out.Trigger(v)
		}
	})
	return out
}
