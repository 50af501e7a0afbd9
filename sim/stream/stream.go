// Package stream builds Stream and Processor combinators on top of the
// sim package's Process machinery: a Stream is a possibly-infinite,
// lazily unfolded sequence of values produced inside a single cooperative
// process, and a Processor is an arrow from one Stream to another. Both
// types mirror the structure of the kernel's own continuation-passing
// Process type rather than introducing a separate execution model.
package stream

import (
	sim "github.com/cpehle/aivika/sim"
)

// Stream is a lazily unfolded sequence: running it inside a process
// context yields the next value together with the continuation that
// produces the rest of the stream. A Stream never produces a value on
// its own; it must be driven by a process, the same way the kernel's
// Process type is only ever advanced by Resume.
type Stream[T any] func(pc *sim.ProcessCtx) (T, Stream[T])

// Repeat builds an infinite Stream that calls gen once per element.
func Repeat[T any](gen func(pc *sim.ProcessCtx) T) Stream[T] {
	var self Stream[T]
	self = func(pc *sim.ProcessCtx) (T, Stream[T]) {
		return gen(pc), self
	}
	return self
}

// FromSlice builds a finite Stream over a fixed slice of values, each
// produced without suspending. The returned Stream is exhausted (its
// continuation is nil) once every element has been yielded; callers must
// check for a nil continuation rather than calling an exhausted Stream.
func FromSlice[T any](values []T) Stream[T] {
	var build func(i int) Stream[T]
	build = func(i int) Stream[T] {
		if i >= len(values) {
			return nil
		}
		return func(pc *sim.ProcessCtx) (T, Stream[T]) {
			return values[i], build(i + 1)
		}
	}
	return build(0)
}

// FromQueue builds a Stream that dequeues one item from q per element,
// suspending the driving process until an item is available.
func FromQueue[T any](q *sim.Queue[T]) Stream[T] {
	var self Stream[T]
	self = func(pc *sim.ProcessCtx) (T, Stream[T]) {
		return q.Dequeue(pc), self
	}
	return self
}

// Take drives s for at most n elements, collecting them into a slice. It
// stops early if s is exhausted (a nil continuation) before n elements
// are produced.
func Take[T any](pc *sim.ProcessCtx, s Stream[T], n int) []T {
	out := make([]T, 0, n)
	for i := 0; i < n && s != nil; i++ {
		var v T
		v, s = s(pc)
		out = append(out, v)
	}
	return out
}

// Sink drains s forever (or until it is exhausted), calling onValue for
// every element. Used to run a Stream purely for its side effects, the
// way a model's top-level consumer typically does.
func Sink[T any](pc *sim.ProcessCtx, s Stream[T], onValue func(T)) {
	for s != nil {
		var v T
		v, s = s(pc)
		onValue(v)
	}
}
