package sim

import (
	"math"
	"sort"
)

// SampleStats accumulates simple summary statistics over a stream of
// float64 samples (e.g. queue wait times), retaining every sample so that
// Percentile can sort them. Adapted from the teacher's
// metrics_utils.go (CalculateMean/CalculatePercentile), generalized away
// from its millisecond-scaled, LLM-metrics-specific callers.
type SampleStats struct {
	count    int
	sum      float64
	min, max float64
	samples  []float64 // every sample added, read by Percentile
}

// Add records x. Every sample added to a wait-time SampleStats must be
// non-negative; callers enforce that invariant, not SampleStats itself,
// since SampleStats is also used for quantities that may legitimately be
// negative (e.g. a signed drift).
func (s *SampleStats) Add(x float64) {
	if s.count == 0 {
		s.min, s.max = x, x
	} else {
		s.min = math.Min(s.min, x)
		s.max = math.Max(s.max, x)
	}
	s.count++
	s.sum += x
	s.samples = append(s.samples, x)
}

// Count returns the number of samples recorded.
func (s *SampleStats) Count() int { return s.count }

// Mean returns the arithmetic mean of all recorded samples, or 0 if none.
func (s *SampleStats) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// Min and Max return the smallest/largest recorded sample.
func (s *SampleStats) Min() float64 { return s.min }
func (s *SampleStats) Max() float64 { return s.max }

// Percentile returns the p-th percentile (0-100) via linear interpolation
// between order statistics.
func (s *SampleStats) Percentile(p float64) float64 {
	if s.count == 0 {
		return 0
	}
	sorted := make([]float64, len(s.samples))
	copy(sorted, s.samples)
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
