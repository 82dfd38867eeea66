// Package metrics aggregates per-task similarity scores.
package metrics

import "math"

// Stats describes a sample of scores.
type Stats struct {
	N      int
	Mean   float64
	StdDev float64
	CILow  float64
	CIHigh float64
}

// Describe computes population mean and standard deviation plus a 95%
// confidence interval (normal approximation, z=1.96) of values. The interval
// collapses to the mean when fewer than 2 values are present.
func Describe(values []float64) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}

	s.Mean = Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - s.Mean
		sumSq += d * d
	}
	s.StdDev = math.Sqrt(sumSq / float64(s.N))

	s.CILow, s.CIHigh = s.Mean, s.Mean
	if s.N >= 2 {
		// sample standard deviation (Bessel's correction)
		sampleSD := math.Sqrt(sumSq / float64(s.N-1))
		margin := 1.96 * sampleSD / math.Sqrt(float64(s.N))
		s.CILow, s.CIHigh = s.Mean-margin, s.Mean+margin
	}
	return s
}

// Mean computes the arithmetic mean of values, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
