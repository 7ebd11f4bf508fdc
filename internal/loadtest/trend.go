package loadtest

import (
	"sort"
	"sync"
	"time"
)

// Trend collects latency samples of one scenario.
type Trend struct {
	name string

	mu      sync.Mutex
	samples []time.Duration
}

func NewTrend(name string) *Trend {
	return &Trend{name: name}
}

func (t *Trend) Name() string {
	return t.name
}

func (t *Trend) Add(d time.Duration) {
	t.mu.Lock()
	t.samples = append(t.samples, d)
	t.mu.Unlock()
}

// TrendStats summarizes a trend.
type TrendStats struct {
	Count int
	Avg   time.Duration
	Min   time.Duration
	Med   time.Duration
	Max   time.Duration
	P90   time.Duration
	P95   time.Duration
}

// Stats computes the summary. Percentiles interpolate linearly between the
// closest ranks; an empty trend yields zero values.
func (t *Trend) Stats() TrendStats {
	t.mu.Lock()
	sorted := make([]time.Duration, len(t.samples))
	copy(sorted, t.samples)
	t.mu.Unlock()

	if len(sorted) == 0 {
		return TrendStats{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return TrendStats{
		Count: len(sorted),
		Avg:   sum / time.Duration(len(sorted)),
		Min:   sorted[0],
		Med:   percentile(sorted, 0.5),
		Max:   sorted[len(sorted)-1],
		P90:   percentile(sorted, 0.9),
		P95:   percentile(sorted, 0.95),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lower)
	return sorted[lower] + time.Duration(frac*float64(sorted[lower+1]-sorted[lower]))
}
