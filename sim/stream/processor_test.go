package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sim "github.com/cpehle/aivika/sim"
)

func TestIdentityProcessorPassesThroughUnchanged(t *testing.T) {
	sctx := testSimCtx()
	var got []int

	sim.RunEventNow(sctx, func(ctx sim.EventCtx) {
		sim.RunProcess(ctx, func(pc *sim.ProcessCtx) {
			out := Run(Identity[int](), FromSlice([]int{1, 2, 3}))
			got = Take(pc, out, 3)
		})
	})

	assert.Equal(t, []int{1, 2, 3}, got)
}

// Compose(map(f), map(g)) must equal the single pass that applies f and
// then g to each element.
func TestComposeChainsTwoProcessors(t *testing.T) {
	sctx := testSimCtx()
	var got []int

	double := mapProcessor(func(v int) int { return v * 2 })
	addOne := mapProcessor(func(v int) int { return v + 1 })

	sim.RunEventNow(sctx, func(ctx sim.EventCtx) {
		sim.RunProcess(ctx, func(pc *sim.ProcessCtx) {
			composed := Compose(double, addOne)
			out := Run(composed, FromSlice([]int{1, 2, 3}))
			got = Take(pc, out, 3)
		})
	})

	assert.Equal(t, []int{3, 5, 7}, got) // (v*2)+1
}

func TestFirstLeavesSecondUntouched(t *testing.T) {
	sctx := testSimCtx()
	var got []Pair[int, string]

	sim.RunEventNow(sctx, func(ctx sim.EventCtx) {
		sim.RunProcess(ctx, func(pc *sim.ProcessCtx) {
			pairs := FromSlice([]Pair[int, string]{
				{First: 1, Second: "a"},
				{First: 2, Second: "b"},
			})
			out := Run(First[int, int, string](mapProcessor(func(v int) int { return v * 10 })), pairs)
			got = Take(pc, out, 2)
		})
	})

	assert.Equal(t, []Pair[int, string]{{First: 10, Second: "a"}, {First: 20, Second: "b"}}, got)
}

func TestProductRunsBothSidesConcurrently(t *testing.T) {
	sctx := testSimCtx()
	var got Pair[int, int]

	sim.RunEventNow(sctx, func(ctx sim.EventCtx) {
		sim.RunProcess(ctx, func(pc *sim.ProcessCtx) {
			pairs := FromSlice([]Pair[int, int]{{First: 3, Second: 4}})
			p := Product(mapProcessor(func(v int) int { return v * 10 }), mapProcessor(func(v int) int { return v + 1 }))
			out := Run(p, pairs)
			got = Take(pc, out, 1)[0]
		})
	})

	assert.Equal(t, Pair[int, int]{First: 30, Second: 5}, got)
}

func TestLoopFeedsBackPreviousOutput(t *testing.T) {
	sctx := testSimCtx()
	var got []int

	sim.RunEventNow(sctx, func(ctx sim.EventCtx) {
		sim.RunProcess(ctx, func(pc *sim.ProcessCtx) {
			// p adds the feedback value to the input and emits the sum as
			// both the visible output and the next feedback.
			var p Processor[Pair[int, int], Pair[int, int]]
			p = func(pc *sim.ProcessCtx, in Stream[Pair[int, int]]) (Pair[int, int], Processor[Pair[int, int], Pair[int, int]], Stream[Pair[int, int]]) {
				pair, rest := in(pc)
				sum := pair.First + pair.Second
				return Pair[int, int]{First: sum, Second: sum}, p, rest
			}
			loop := Loop(p, Identity[int]())
			out := Run(loop, FromSlice([]int{1, 1, 1}))
			got = Take(pc, out, 3)
		})
	})

	assert.Equal(t, []int{1, 2, 3}, got)
}

// mapProcessor builds a Processor out of a pure function, for tests that
// exercise the arrow combinators rather than Map itself.
func mapProcessor[A, B any](f func(A) B) Processor[A, B] {
	var self func() Processor[A, B]
	self = func() Processor[A, B] {
		return func(pc *sim.ProcessCtx, in Stream[A]) (B, Processor[A, B], Stream[A]) {
			v, rest := in(pc)
			return f(v), self(), rest
		}
	}
	return self()
}
