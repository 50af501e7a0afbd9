package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecsIterationCount(t *testing.T) {
	s := Specs{Start: 0, Stop: 10, Dt: 0.5, Method: Euler}
	assert.Equal(t, 20, s.IterationCount())
}

func TestSpecsValidatePanicsOnNonPositiveDt(t *testing.T) {
	assert.Panics(t, func() { Specs{Start: 0, Stop: 1, Dt: 0}.Validate() })
}

func TestSpecsValidatePanicsWhenStopBeforeStart(t *testing.T) {
	assert.Panics(t, func() { Specs{Start: 5, Stop: 1, Dt: 1}.Validate() })
}

func TestSpecsBasicTimeAcrossPhases(t *testing.T) {
	s := Specs{Start: 0, Stop: 10, Dt: 2, Method: RK4}
	got := []float64{
		s.BasicTime(3, 0),
		s.BasicTime(3, 1),
		s.BasicTime(3, 2),
		s.BasicTime(3, 3),
	}
	assert.Equal(t, []float64{6, 7, 7, 8}, got)
}

func TestSpecsBasicTimePanicsOffGrid(t *testing.T) {
	s := Specs{Start: 0, Stop: 10, Dt: 1, Method: Euler}
	assert.Panics(t, func() { s.BasicTime(1, -1) })
}

func TestPointOffGrid(t *testing.T) {
	onGrid := Point{Phase: 0}
	offGrid := Point{Phase: -1}
	assert.False(t, onGrid.OffGrid())
	assert.True(t, offGrid.OffGrid())
}

func TestIntegrationMethodPhases(t *testing.T) {
	cases := map[IntegrationMethod]int{Euler: 1, RK2: 2, RK4: 4}
	for method, want := range cases {
		assert.Equal(t, want, method.Phases(), "%v.Phases()", method)
	}
}
