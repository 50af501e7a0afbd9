package cmd

import (
	"math"

	sim "github.com/cpehle/aivika/sim"
)

// queueingResult summarizes one run of the multi-server queueing demo.
type queueingResult struct {
	served         int
	lost           int
	waitMean       float64
	waitP95        float64
	serverBusyTime float64
}

// runQueueingDemo builds an M/M/c-style demo: arrivalCount customers
// arrive under a Poisson process at arrivalRate, queue (unbounded FCFS)
// for one of serverCount servers each taking an exponential service time
// at serviceRate, and depart. The event queue is driven up to specs.Stop;
// customers still waiting or in service at that time are not counted as
// served. It exercises Process, Resource, and the partitioned RNG
// together, the way a model built directly on the kernel would.
func runQueueingDemo(specs sim.Specs, seed int64, arrivalRate, serviceRate float64, serverCount, arrivalCount int) queueingResult {
	var result queueingResult
	waitStats := &sim.SampleStats{}

	model := func(sctx *sim.SimCtx) any {
		run := sctx.Run
		arrivalRNG := run.RNG.ForSubsystem("arrivals")
		serviceRNG := run.RNG.ForSubsystem("service")

		maxServers := serverCount
		server := sim.NewResource(sim.FCFS, serverCount, &maxServers, nil)

		sim.RunEventNow(sctx, func(ctx sim.EventCtx) {
			sim.RunProcess(ctx, func(pc *sim.ProcessCtx) {
				for i := 0; i < arrivalCount; i++ {
					interArrival := -math.Log(1-arrivalRNG.Float64()) / arrivalRate
					sim.Hold(pc, interArrival)

					sim.SpawnProcess(pc.AsEventCtx(), sim.NoLinkage, pc.PID(), func(cpc *sim.ProcessCtx) {
						arrivedAt := cpc.Point.Time
						sim.Request(cpc, server)
						waitStats.Add(cpc.Point.Time - arrivedAt)

						serviceTime := -math.Log(1-serviceRNG.Float64()) / serviceRate
						result.serverBusyTime += serviceTime
						sim.Hold(cpc, serviceTime)

						sim.Release(cpc.AsEventCtx(), server)
						result.served++
					})
				}
			})
		})
		run.Queue.Drain(sim.Point{Specs: specs, Run: run, Time: specs.Stop, Iteration: specs.IterationCount(), Phase: -1})
		return nil
	}

	sim.RunSimulation(model, specs, seed)
	result.waitMean = waitStats.Mean()
	result.waitP95 = waitStats.Percentile(95)
	return result
}

// integrationResult reports one RK-family integration of the decay
// equation dx/dt = -k*x, compared against its closed-form solution.
type integrationResult struct {
	final    float64
	expected float64
	absError float64
}

// runIntegrationDemo exercises the Integrator directly, outside of any
// event-driven model, to demonstrate the kernel's Dynamics layer in
// isolation.
func runIntegrationDemo(specs sim.Specs, k, initial float64) integrationResult {
	model := func(sctx *sim.SimCtx) any {
		var integrator *sim.Integrator
		integrator = sim.NewIntegrator(func(dctx sim.DynCtx) float64 {
			return -k * integrator.Read(dctx)
		}, initial, 0)

		// Phase 0 is the only phase whose BasicTime is iteration*dt for
		// every method (delta(method, 0) = 0 across Euler/RK2/RK4), so it is
		// the uniform way to address "the value at iteration i" across
		// methods; the other phases are RK sub-steps internal to reaching
		// the next iteration's own phase 0.
		point := sim.Point{
			Specs:     specs,
			Run:       sctx.Run,
			Time:      specs.Stop,
			Iteration: specs.IterationCount(),
			Phase:     0,
		}
		return integrator.Read(sim.DynCtx{SimCtx: sctx, Point: point})
	}

	final := sim.RunSimulation(model, specs, 0).(float64)
	expected := initial * math.Exp(-k*(specs.Stop-specs.Start))
	return integrationResult{final: final, expected: expected, absError: math.Abs(final - expected)}
}
