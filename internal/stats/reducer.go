// Package stats reduces raw duration samples into summary statistics.
package stats

import (
	"math"
	"time"
)

// Summary holds the reduction of an ordered sequence of duration samples.
type Summary struct {
	Count  int
	Total  time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// Reduce computes total, min, max, mean and population standard deviation
// (variance divided by N, not N-1) over the given samples. An empty slice
// yields the zero Summary; callers that require at least one sample must
// validate before reducing.
func Reduce(samples []time.Duration) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(samples),
		Min:   samples[0],
		Max:   samples[0],
	}
	for _, d := range samples {
		s.Total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Mean = s.Total / time.Duration(len(samples))

	// Variance is computed in float64 nanoseconds so sub-millisecond samples
	// do not lose precision to integer truncation.
	mean := float64(s.Total) / float64(len(samples))
	var sumSquares float64
	for _, d := range samples {
		diff := float64(d) - mean
		sumSquares += diff * diff
	}
	s.StdDev = time.Duration(math.Sqrt(sumSquares / float64(len(samples))))

	return s
}
