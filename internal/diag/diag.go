// Package diag provides read-only introspection into nucleus state and
// per-process CPU-time accounting as plain Go methods (this nucleus has
// no network surface). It never mutates the state it reports on.
package diag

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/montanaflynn/stats"
)

// Event is one recorded scheduler/termination event kept for diagnostics.
type Event struct {
	Kind string // "dispatch", "terminate", "panic", ...
	PID  int
	Note string
}

// History is a bounded, statically capped ring of recent events: every
// nucleus pool is finite and statically sized, history included.
type History struct {
	cache *lru.Cache[int, Event]
	seq    int
	order  []int
	cap    int
}

// NewHistory creates a History capped at holding the most recent n
// events.
func NewHistory(n int) *History {
	c, _ := lru.New[int, Event](n)
	return &History{cache: c, cap: n}
}

// Record appends ev, evicting the oldest event if the cap is exceeded.
func (h *History) Record(ev Event) {
	h.seq++
	h.cache.Add(h.seq, ev)
	h.order = append(h.order, h.seq)
	if len(h.order) > h.cap {
		h.order = h.order[len(h.order)-h.cap:]
	}
}

// Recent returns up to n most recent events, oldest first.
func (h *History) Recent(n int) []Event {
	if n > len(h.order) {
		n = len(h.order)
	}
	out := make([]Event, 0, n)
	start := len(h.order) - n
	for _, seq := range h.order[start:] {
		if ev, ok := h.cache.Get(seq); ok {
			out = append(out, ev)
		}
	}
	return out
}

// CPUTimeStats summarizes a sample of per-process accumulated CPU times,
// in nanoseconds, using montanaflynn/stats for mean/variance
// aggregation.
type CPUTimeStats struct {
	Mean     float64
	Variance float64
	StdDev   float64
}

// SummarizeCPUTimes computes aggregate statistics over a set of
// per-process CPU-time samples (nanoseconds). Tests use this to assert
// within a tolerance of one slice, not exact values.
func SummarizeCPUTimes(samplesNs []float64) (CPUTimeStats, error) {
	data := stats.LoadRawData(samplesNs)
	mean, err := data.Mean()
	if err != nil {
		return CPUTimeStats{}, err
	}
	variance, err := data.Variance()
	if err != nil {
		return CPUTimeStats{}, err
	}
	stddev, err := data.StandardDeviation()
	if err != nil {
		return CPUTimeStats{}, err
	}
	return CPUTimeStats{Mean: mean, Variance: variance, StdDev: stddev}, nil
}
