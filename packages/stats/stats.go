// Package stats aggregates completion latencies of repeated requests.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Recorder collects latencies in an HDR histogram (1us to 60s, 3 significant digits).
// It is not safe for concurrent use; the engine runs one request at a time.
type Recorder struct {
	histogram *hdrhistogram.Histogram
	outcomes  map[string]int64
	total     int64
	errors    int64
}

func NewRecorder() *Recorder {
	return &Recorder{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		outcomes:  make(map[string]int64),
	}
}

// Record adds one completed request. outcome is "ok" or the error sentinel it ended with.
func (r *Recorder) Record(d time.Duration, outcome string, failed bool) {
	r.total++
	if failed {
		r.errors++
	}
	r.outcomes[outcome]++

	latencyUs := d.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}
	_ = r.histogram.RecordValue(latencyUs)
}

type Summary struct {
	Total    int64
	Errors   int64
	Outcomes map[string]int64
	Min      time.Duration
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// ErrorRate returns the failed fraction, 0 when nothing was recorded.
func (s Summary) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

func (r *Recorder) Summary() Summary {
	s := Summary{
		Total:    r.total,
		Errors:   r.errors,
		Outcomes: make(map[string]int64, len(r.outcomes)),
	}
	for k, v := range r.outcomes {
		s.Outcomes[k] = v
	}
	if r.total == 0 {
		return s
	}

	s.Min = usToDuration(r.histogram.Min())
	s.Mean = time.Duration(r.histogram.Mean() * float64(time.Microsecond))
	s.P50 = usToDuration(r.histogram.ValueAtQuantile(50))
	s.P95 = usToDuration(r.histogram.ValueAtQuantile(95))
	s.P99 = usToDuration(r.histogram.ValueAtQuantile(99))
	s.Max = usToDuration(r.histogram.Max())
	return s
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
