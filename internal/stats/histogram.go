package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram records latency samples for percentile queries.
// It is not safe for concurrent use; callers guard access.
type Histogram struct {
	h *hdrhistogram.Histogram
}

// NewHistogram creates a histogram tracking latencies from 1µs up to 60s
// with 3 significant figures.
func NewHistogram() *Histogram {
	return &Histogram{h: hdrhistogram.New(1, 60_000_000, 3)}
}

// Record adds one latency sample. Values outside the trackable range are
// clamped rather than dropped; non-positive values are ignored.
func (hg *Histogram) Record(d time.Duration) {
	if d <= 0 {
		return
	}
	us := d.Microseconds()
	if us < hg.h.LowestTrackableValue() {
		us = hg.h.LowestTrackableValue()
	}
	if us > hg.h.HighestTrackableValue() {
		us = hg.h.HighestTrackableValue()
	}
	_ = hg.h.RecordValue(us)
}

// Quantile returns the latency at quantile q in [0, 100].
// Returns zero when no samples have been recorded.
func (hg *Histogram) Quantile(q float64) time.Duration {
	if hg.h.TotalCount() == 0 {
		return 0
	}
	return time.Duration(hg.h.ValueAtQuantile(q)) * time.Microsecond
}

// Count returns the number of recorded samples.
func (hg *Histogram) Count() int64 {
	return hg.h.TotalCount()
}

// Reset discards all recorded samples.
func (hg *Histogram) Reset() {
	hg.h.Reset()
}
