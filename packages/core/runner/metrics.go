package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LatencySummary aggregates request durations for one run.
type LatencySummary struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

type latencyRecorder struct {
	histogram *hdrhistogram.Histogram
}

func newLatencyRecorder() *latencyRecorder {
	// 1us to 60s range, 3 significant digits
	return &latencyRecorder{
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

func (r *latencyRecorder) Record(d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > 60_000_000 {
		us = 60_000_000
	}
	_ = r.histogram.RecordValue(us)
}

func (r *latencyRecorder) Summary() *LatencySummary {
	if r.histogram.TotalCount() == 0 {
		return &LatencySummary{}
	}
	return &LatencySummary{
		Count: r.histogram.TotalCount(),
		P50:   time.Duration(r.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(r.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(r.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Min:   time.Duration(r.histogram.Min()) * time.Microsecond,
		Max:   time.Duration(r.histogram.Max()) * time.Microsecond,
		Mean:  time.Duration(r.histogram.Mean()) * time.Microsecond,
	}
}
