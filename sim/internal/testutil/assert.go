// Package testutil provides shared test assertion helpers used across the
// sim package and its subpackages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFloat64Within compares two float64 values with absolute tolerance,
// for cases where want may be exactly zero (relative tolerance is undefined there).
func AssertFloat64Within(t *testing.T, name string, want, got, absTol float64) {
	t.Helper()
	diff := math.Abs(want - got)
	if diff > absTol {
		t.Errorf("%s: got %v, want %v (abs diff=%v, tol=%v)", name, got, want, diff, absTol)
	}
}

// AssertNonDecreasing fails the test if values is not a non-decreasing sequence.
// Used to check clock-monotonicity style invariants across a recorded trace.
func AssertNonDecreasing(t *testing.T, name string, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Errorf("%s: value at index %d (%v) is less than previous (%v)", name, i, values[i], values[i-1])
		}
	}
}
