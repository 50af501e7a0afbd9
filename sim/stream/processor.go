package stream

import sim "github.com/cpehle/aivika/sim"

// Pair is the paired-value carrier used by the arrow combinators (First,
// Product, Loop) that need to thread a second value alongside the one a
// Processor actually transforms.
type Pair[X, Y any] struct {
	First  X
	Second Y
}

// Processor is an arrow from a Stream of A to a Stream of B: a function
// that, given a driving process and the upstream Stream, produces one
// downstream value and the continuation Processor to produce the rest.
// Processor composes the same way Stream does, so pipelines built from
// Processors inherit Stream's laziness: nothing downstream runs ahead of
// what upstream has actually produced.
type Processor[A, B any] func(pc *sim.ProcessCtx, in Stream[A]) (B, Processor[A, B], Stream[A])

// constStream wraps a single already-known value as a one-shot Stream,
// used internally to feed an already-produced upstream value into a
// nested Processor call without re-driving the real upstream Stream.
func constStream[A any](v A) Stream[A] {
	return func(pc *sim.ProcessCtx) (A, Stream[A]) { return v, nil }
}

// Run applies p to in, producing a Stream[B] that drives in lazily.
func Run[A, B any](p Processor[A, B], in Stream[A]) Stream[B] {
	return func(pc *sim.ProcessCtx) (B, Stream[B]) {
		v, next, rest := p(pc, in)
		if rest == nil {
			return v, nil
		}
		return v, Run(next, rest)
	}
}

// Identity passes every upstream value through unchanged.
func Identity[A any]() Processor[A, A] {
	var self Processor[A, A]
	self = func(pc *sim.ProcessCtx, in Stream[A]) (A, Processor[A, A], Stream[A]) {
		v, rest := in(pc)
		return v, self, rest
	}
	return self
}

// Compose chains p (A to B) into q (B to C), yielding an A-to-C arrow.
func Compose[A, B, C any](p Processor[A, B], q Processor[B, C]) Processor[A, C] {
	return func(pc *sim.ProcessCtx, in Stream[A]) (C, Processor[A, C], Stream[A]) {
		b, pNext, aRest := p(pc, in)
		c, qNext, _ := q(pc, constStream(b))
		return c, Compose(pNext, qNext), aRest
	}
}

// First lifts p to act on the First half of a Pair stream, passing
// Second through untouched.
func First[A, B, C any](p Processor[A, B]) Processor[Pair[A, C], Pair[B, C]] {
	return func(pc *sim.ProcessCtx, s Stream[Pair[A, C]]) (Pair[B, C], Processor[Pair[A, C], Pair[B, C]], Stream[Pair[A, C]]) {
		pair, rest := s(pc)
		b, pNext, _ := p(pc, constStream(pair.First))
		return Pair[B, C]{First: b, Second: pair.Second}, First[A, B, C](pNext), rest
	}
}

// Second lifts p to act on the Second half of a Pair stream, passing
// First through untouched.
func Second[A, B, C any](p Processor[A, B]) Processor[Pair[C, A], Pair[C, B]] {
	return func(pc *sim.ProcessCtx, s Stream[Pair[C, A]]) (Pair[C, B], Processor[Pair[C, A], Pair[C, B]], Stream[Pair[C, A]]) {
		pair, rest := s(pc)
		b, pNext, _ := p(pc, constStream(pair.Second))
		return Pair[C, B]{First: pair.First, Second: b}, Second[A, B, C](pNext), rest
	}
}

// Product runs p and q against the two halves of a Pair stream
// concurrently (via sim.Parallel) and pairs their outputs.
func Product[A, B, C, D any](p Processor[A, B], q Processor[C, D]) Processor[Pair[A, C], Pair[B, D]] {
	return func(pc *sim.ProcessCtx, s Stream[Pair[A, C]]) (Pair[B, D], Processor[Pair[A, C], Pair[B, D]], Stream[Pair[A, C]]) {
		pair, rest := s(pc)

		var b B
		var d D
		var pNext Processor[A, B]
		var qNext Processor[C, D]
		sim.Parallel(pc, sim.NoLinkage, []func(*sim.ProcessCtx){
			func(cpc *sim.ProcessCtx) { b, pNext, _ = p(cpc, constStream(pair.First)) },
			func(cpc *sim.ProcessCtx) { d, qNext, _ = q(cpc, constStream(pair.Second)) },
		})
		return Pair[B, D]{First: b, Second: d}, Product[A, B, C, D](pNext, qNext), rest
	}
}

// Loop feeds q's output back into p as the Second half of its input
// Pair, closing a feedback network around p into a single A-to-B arrow.
// feedback carries q's output into the next round; it starts at the zero
// value of D on the network's very first step.
func Loop[A, B, D any](p Processor[Pair[A, D], Pair[B, D]], q Processor[D, D]) Processor[A, B] {
	var step func(p Processor[Pair[A, D], Pair[B, D]], q Processor[D, D], feedback D) Processor[A, B]
	step = func(p Processor[Pair[A, D], Pair[B, D]], q Processor[D, D], feedback D) Processor[A, B] {
		return func(pc *sim.ProcessCtx, in Stream[A]) (B, Processor[A, B], Stream[A]) {
			a, rest := in(pc)
			out, pNext, _ := p(pc, constStream(Pair[A, D]{First: a, Second: feedback}))
			nextFeedback, qNext, _ := q(pc, constStream(out.Second))
			return out.First, step(pNext, qNext, nextFeedback), rest
		}
	}
	var zero D
	return step(p, q, zero)
}
