package sim

// Shared scaffolding for this package's white-box tests: a throwaway Run
// and the EventCtx/SimCtx pinned to its start, used by tests that only
// need "some valid context" rather than a driven simulation.

func testRun() *Run {
	return newRun(Specs{Start: 0, Stop: 100, Dt: 1, Method: Euler}, 0, 1, 1)
}

func testSimCtx() *SimCtx {
	return &SimCtx{Run: testRun()}
}

func testEventCtx() EventCtx {
	sctx := testSimCtx()
	point := sctx.Run.startPoint()
	point.Phase = -1
	return newEventCtx(sctx, point)
}
