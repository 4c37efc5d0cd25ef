package metrics

import (
	"fmt"
	"math"
)

// Welford computes the running mean and sample variance of a series of
// observations with Welford's online algorithm. It also tracks the smallest
// and largest observation. The zero value is ready to use.
type Welford struct {
	mean     float64
	m2       float64
	count    uint64
	min, max float64
}

// Update adds an observation.
func (w *Welford) Update(val float64) {
	w.count++
	if w.count == 1 || val < w.min {
		w.min = val
	}
	if w.count == 1 || val > w.max {
		w.max = val
	}
	delta := val - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (val - w.mean)
}

// Get returns the mean and the sample variance. The variance is NaN until
// there are at least two observations.
func (w *Welford) Get() (mean, variance float64, count uint64) {
	if w.count < 2 {
		return w.mean, math.NaN(), w.count
	}
	return w.mean, w.m2 / float64(w.count-1), w.count
}

// Stddev returns the sample standard deviation.
func (w *Welford) Stddev() float64 {
	_, variance, _ := w.Get()
	return math.Sqrt(variance)
}

// Range returns the smallest and the largest observation.
func (w *Welford) Range() (min, max float64) {
	return w.min, w.max
}

// Count returns the number of observations.
func (w *Welford) Count() uint64 {
	return w.count
}

// Reset forgets all observations.
func (w *Welford) Reset() {
	*w = Welford{}
}

func (w *Welford) String() string {
	if w.count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("mean %.1f, stddev %.1f, min %.0f, max %.0f (n=%d)", w.mean, w.Stddev(), w.min, w.max, w.count)
}
