package sim

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// DynCtx is the Dynamics context: a Simulation context refined with the
// Point at which a Dynamics computation is being evaluated.
type DynCtx struct {
	*SimCtx
	Point Point
}

// Dynamics is a pure function from Point to value: the substrate for ODE
// integrators, interpolation, and memoization across the integration
// grid. f must depend only on ctx.Point (and values reachable through it);
// it must not mutate state outside of what an Integrator manages for it.
type Dynamics[T any] func(ctx DynCtx) T

// gridKey identifies one evaluation point on the integration grid: phase 0
// of iteration i denotes the value at the left edge of step i's interval
// (time Start+i*Dt); the method's last phase denotes the value at the
// right edge (time Start+(i+1)*Dt), the result of fully stepping over
// that interval. A method's middle phases (RK4's two midpoint stages)
// never escape the integrator: they exist only as the scratch Points
// its own derivative evaluations run at.
type gridKey struct {
	iteration int
	phase     int
}

// Integrator numerically integrates a derivative Dynamics value over the
// run's grid using the Specs' chosen method (Euler/RK2/RK4), memoizing
// computed values per (iteration, phase) so that repeated reads at the
// same grid coordinate — which happen whenever more than one downstream
// Dynamics value depends on the same integral, and whenever deriv itself
// reads back through this same Integrator to define a self-referential
// ODE — are cheap and, in the self-referential case, well-founded rather
// than infinitely recursive: before invoking deriv at a stage's Point,
// valueAt seeds that Point's cache entry with the stage's own predictor
// value, so a deriv closure that calls Read at the exact Point it was
// handed observes the predictor instead of re-entering its own
// computation.
type Integrator struct {
	deriv   Dynamics[float64]
	initial float64
	cache   *lru.Cache[gridKey, float64]
}

// NewIntegrator allocates an Integrator over deriv (dx/dt) starting from
// initial at the run's start time. cacheSize bounds the number of grid
// points memoized at once; pass 0 to use a default sized well beyond any
// single step's scratch footprint.
func NewIntegrator(deriv Dynamics[float64], initial float64, cacheSize int) *Integrator {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, _ := lru.New[gridKey, float64](cacheSize)
	return &Integrator{deriv: deriv, initial: initial, cache: cache}
}

// Read returns the integrator's value at ctx.Point. On the grid
// (phase >= 0) it looks up or computes the corresponding grid value;
// off the grid (phase == -1, an event-dispatch instant) it linearly
// interpolates between the two nearest grid points — the normative
// behaviour this specification settles on where the source it was
// distilled from was ambiguous.
func (g *Integrator) Read(ctx DynCtx) float64 {
	p := ctx.Point
	if p.OffGrid() {
		return g.interpolate(ctx)
	}
	if v, ok := g.cache.Get(gridKey{p.Iteration, p.Phase}); ok {
		return v
	}
	return g.valueAt(ctx, p.Iteration, p.Phase)
}

// valueAt returns the integrator's value at a specific grid coordinate,
// stepping and memoizing whichever earlier iterations are needed.
func (g *Integrator) valueAt(ctx DynCtx, iteration, phase int) float64 {
	specs := ctx.Point.Specs
	lastPhase := specs.Method.Phases() - 1

	if iteration == 0 && phase == 0 {
		return g.initial
	}

	key := gridKey{iteration, phase}
	if v, ok := g.cache.Get(key); ok {
		return v
	}

	// phase == lastPhase steps from this iteration's own left edge to its
	// right edge — the value that iteration+1's phase 0 will alias. This
	// must be checked before the phase-0 alias below, because a
	// single-phase method (Euler) has phase 0 and lastPhase coincide: its
	// one phase always steps, it never merely aliases.
	if phase == lastPhase {
		var yEntry float64
		if iteration == 0 {
			yEntry = g.initial
		} else {
			yEntry = g.valueAt(ctx, iteration-1, lastPhase)
		}
		dt := specs.Dt
		var v float64
		switch specs.Method {
		case Euler:
			g.cache.Add(key, yEntry)
			k0 := g.derivAt(ctx, iteration, 0)
			v = yEntry + dt*k0
		case RK2:
			k0 := g.derivAt(ctx, iteration, 0)
			g.cache.Add(key, yEntry+dt*k0)
			k1 := g.derivAt(ctx, iteration, 1)
			v = yEntry + dt*floats.Dot([]float64{0.5, 0.5}, []float64{k0, k1})
		case RK4:
			k0 := g.derivAt(ctx, iteration, 0)
			g.cache.Add(gridKey{iteration, 1}, yEntry+dt/2*k0)
			k1 := g.derivAt(ctx, iteration, 1)
			g.cache.Add(gridKey{iteration, 2}, yEntry+dt/2*k1)
			k2 := g.derivAt(ctx, iteration, 2)
			g.cache.Add(key, yEntry+dt*k2)
			k3 := g.derivAt(ctx, iteration, 3)
			v = yEntry + dt*floats.Dot(rk4Weights[:], []float64{k0, k1, k2, k3})
		}
		g.cache.Add(key, v)
		return v
	}

	if phase == 0 {
		// Phase 0 of a multi-phase method's iteration aliases the
		// previous iteration's fully-stepped result: this iteration's
		// left edge is the last one's right edge.
		v := g.valueAt(ctx, iteration-1, lastPhase)
		g.cache.Add(key, v)
		return v
	}

	// Any other phase is an RK mid-step scratch point; it is always
	// seeded into the cache by the phase == lastPhase branch above before
	// its own derivAt call runs, so an uncached read here means something
	// asked for it out of that sequence.
	logrus.Panicf("dynamics: scratch phase %d of iteration %d read before being seeded", phase, iteration)
	return 0
}

// derivAt evaluates the derivative Dynamics at a specific grid coordinate.
func (g *Integrator) derivAt(ctx DynCtx, iteration, phase int) float64 {
	sub := DynCtx{SimCtx: ctx.SimCtx, Point: Point{
		Specs:     ctx.Point.Specs,
		Run:       ctx.Point.Run,
		Time:      ctx.Point.Specs.BasicTime(iteration, phase),
		Iteration: iteration,
		Phase:     phase,
	}}
	return g.deriv(sub)
}

// interpolate linearly interpolates the integrator's grid values around
// an off-grid time, between the grid point at or before t and the one
// immediately after it. It addresses grid points through phase 0, the
// one phase whose BasicTime is iteration*dt regardless of method, so the
// bracket it builds means the same thing for Euler as it does for RK2/RK4.
func (g *Integrator) interpolate(ctx DynCtx) float64 {
	specs := ctx.Point.Specs
	t := ctx.Point.Time

	maxIter := specs.IterationCount()
	m := int(math.Floor((t - specs.Start) / specs.Dt))
	if m < 0 {
		m = 0
	}
	if m >= maxIter {
		return g.valueAt(ctx, maxIter, 0)
	}

	t0 := specs.BasicTime(m, 0)
	v0 := g.valueAt(ctx, m, 0)
	t1 := specs.BasicTime(m+1, 0)
	v1 := g.valueAt(ctx, m+1, 0)
	if t1 == t0 {
		return v0
	}
	weight := (t - t0) / (t1 - t0)
	return v0 + weight*(v1-v0)
}
