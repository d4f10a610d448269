// Package stats keeps running-average generation latency per backend.
package stats

import (
	"sync"

	"routerd/pkg/types"
)

// Series is the running mean and sample count for one backend.
type Series struct {
	AvgMs float64
	N     int64
}

// Tracker accumulates latency per backend kind. The zero value is not
// usable; call New.
type Tracker struct {
	mu     sync.Mutex
	series map[types.Kind]*Series
}

// New returns a Tracker with zeroed series for every known kind.
func New() *Tracker {
	t := &Tracker{series: make(map[types.Kind]*Series, len(types.Kinds))}
	for _, k := range types.Kinds {
		t.series[k] = &Series{}
	}
	return t
}

// Record folds one completed generation into kind's running mean:
// avg = (avg*n + ms) / (n+1).
func (t *Tracker) Record(kind types.Kind, latencyMs float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.series[kind]
	if !ok {
		s = &Series{}
		t.series[kind] = s
	}
	n := float64(s.N)
	s.AvgMs = (s.AvgMs*n + latencyMs) / (n + 1)
	s.N++
}

// Get returns kind's series.
func (t *Tracker) Get(kind types.Kind) Series {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.series[kind]; ok {
		return *s
	}
	return Series{}
}

// Snapshot returns a consistent view of both backends.
func (t *Tracker) Snapshot() types.MetricsResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	small, large := t.series[types.KindSmall], t.series[types.KindLarge]
	return types.MetricsResponse{
		SmallMsAvg: small.AvgMs,
		LargeMsAvg: large.AvgMs,
		SmallN:     small.N,
		LargeN:     large.N,
	}
}
