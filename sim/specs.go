// Package sim implements a discrete-event simulation kernel with
// continuous-time (ODE) integration and cooperative process coordination.
//
// The package follows a layered evaluation model: a Simulation context
// (SimCtx) owns a Run for the lifetime of one simulated execution; a
// Dynamics context (DynCtx) refines it with a Point on the integration
// grid; an Event context (EventCtx) refines Dynamics with event-queue
// dispatch semantics; a Process context (ProcessCtx) refines Event with
// cooperative-coroutine continuation state. Each refinement is expressed
// as Go struct embedding rather than inheritance, per the layering the
// specification calls for.
package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// IntegrationMethod selects the stepping rule used by an Integrator.
type IntegrationMethod int

const (
	Euler IntegrationMethod = iota
	RK2
	RK4
)

func (m IntegrationMethod) String() string {
	switch m {
	case Euler:
		return "Euler"
	case RK2:
		return "RK2"
	case RK4:
		return "RK4"
	default:
		return "Unknown"
	}
}

// Phases returns the number of sub-steps per integration iteration for m.
func (m IntegrationMethod) Phases() int {
	switch m {
	case Euler:
		return 1
	case RK2:
		return 2
	case RK4:
		return 4
	default:
		logrus.Panicf("specs: unknown integration method %v", int(m))
		return 0
	}
}

// phaseDelta returns δ(method, phase), the offset from the start of an
// iteration at which that phase is evaluated.
func phaseDelta(m IntegrationMethod, phase int, dt float64) float64 {
	switch m {
	case Euler:
		return 0
	case RK2:
		switch phase {
		case 0:
			return 0
		case 1:
			return dt
		}
	case RK4:
		switch phase {
		case 0:
			return 0
		case 1:
			return dt / 2
		case 2:
			return dt / 2
		case 3:
			return dt
		}
	}
	logrus.Panicf("specs: phase %d out of range for method %v", phase, m)
	return 0
}

// rk4Weights are the standard RK4 combination weights for the four
// sub-point derivatives, in phase order.
var rk4Weights = [4]float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}

// Specs holds the immutable run parameters for one simulation run.
type Specs struct {
	Start  float64
	Stop   float64
	Dt     float64
	Method IntegrationMethod
}

// Validate checks the invariants Specs must hold: Dt > 0 and Stop >= Start.
// Violations are fatal programmer errors.
func (s Specs) Validate() {
	if s.Dt <= 0 {
		logrus.Panicf("specs: dt must be > 0, got %v", s.Dt)
	}
	if s.Stop < s.Start {
		logrus.Panicf("specs: stop (%v) must be >= start (%v)", s.Stop, s.Start)
	}
}

// IterationCount returns N = round((stop-start)/dt), the number of grid
// steps for a run built from these Specs.
func (s Specs) IterationCount() int {
	return int(math.Round((s.Stop - s.Start) / s.Dt))
}

// BasicTime returns the simulated time at grid coordinate (iteration, phase).
func (s Specs) BasicTime(iteration, phase int) float64 {
	if phase < 0 {
		logrus.Panicf("specs: BasicTime called with off-grid phase %d", phase)
	}
	return s.Start + float64(iteration)*s.Dt + phaseDelta(s.Method, phase, s.Dt)
}

// Point is an instantaneous coordinate within a Run: a simulated time
// paired with the integration-grid iteration and phase it corresponds to.
// Phase -1 denotes an off-grid, event-dispatch instant.
type Point struct {
	Specs     Specs
	Run       *Run
	Time      float64
	Iteration int
	Phase     int
}

// OffGrid reports whether p is an event-dispatch point rather than a
// point on the integration grid.
func (p Point) OffGrid() bool {
	return p.Phase == -1
}

// iterationAt returns floor((t-start)/dt), the grid iteration containing
// simulated time t. Used when fabricating off-grid dispatch points so that
// action code reading "the current iteration" sees a value consistent with
// the event's time.
func iterationAt(s Specs, t float64) int {
	return int(math.Floor((t - s.Start) / s.Dt))
}
