package calibration

import "math"

// DefaultMinObservations is the minimum sample count before the
// calibrator's computed threshold is trusted over the fallback.
const DefaultMinObservations = 10

// DefaultFallbackThreshold is used until DefaultMinObservations samples
// have been observed.
const DefaultFallbackThreshold = 0.7

// Calibrator maintains Welford accumulators (count, mean, M2) over
// observed catalog_shift values, yielding an O(1)-updated running mean
// and sample variance.
//
// Callers synchronize access externally, typically by keeping one
// Calibrator per notebook behind the same lock guarding that notebook's
// coherence snapshot.
type Calibrator struct {
	count             uint64
	mean              float64
	m2                float64
	minObservations   uint64
	fallbackThreshold float64
}

// New returns a Calibrator using the documented defaults.
func New() *Calibrator {
	return &Calibrator{
		minObservations:   DefaultMinObservations,
		fallbackThreshold: DefaultFallbackThreshold,
	}
}

// NewWithSettings returns a Calibrator with explicit min-observations and
// fallback-threshold values.
func NewWithSettings(minObservations uint64, fallbackThreshold float64) *Calibrator {
	return &Calibrator{
		minObservations:   minObservations,
		fallbackThreshold: fallbackThreshold,
	}
}

// Observe folds x into the running mean/variance in O(1) via Welford's
// online algorithm.
func (c *Calibrator) Observe(x float64) {
	c.count++
	delta := x - c.mean
	c.mean += delta / float64(c.count)
	delta2 := x - c.mean
	c.m2 += delta * delta2
}

// Count returns the number of observations folded in so far.
func (c *Calibrator) Count() uint64 {
	return c.count
}

// Mean returns the running mean, 0 if no observations yet.
func (c *Calibrator) Mean() float64 {
	return c.mean
}

// Variance returns the sample variance (Bessel's correction, n-1), 0 for
// n < 2.
func (c *Calibrator) Variance() float64 {
	if c.count < 2 {
		return 0
	}
	return c.m2 / float64(c.count-1)
}

// StdDev returns the sample standard deviation, 0 for n < 2.
func (c *Calibrator) StdDev() float64 {
	return math.Sqrt(c.Variance())
}

// ComputeThreshold returns mean + 2*stddev once count >= minObservations,
// else fallbackThreshold.
func (c *Calibrator) ComputeThreshold() float64 {
	if c.count >= c.minObservations {
		return c.mean + 2*c.StdDev()
	}
	return c.fallbackThreshold
}
