package manager

import (
	"sync/atomic"

	"routerd/internal/backend"
	"routerd/internal/gate"
)

// slot pairs a backend with the gate bounding its concurrency.
type slot struct {
	backend  *backend.Backend
	gate     *gate.Gate
	failures atomic.Int64
}

func newSlot(b *backend.Backend, g *gate.Gate) *slot {
	kind := string(b.Kind())
	g.OnChange(func(inflight int) { gateInflight.WithLabelValues(kind).Set(float64(inflight)) })
	gateCapacity.WithLabelValues(kind).Set(float64(g.Capacity()))
	return &slot{backend: b, gate: g}
}
