package manager

import (
	"context"
	"time"
)

// beginGeneration waits for a slot on s's gate. Waiting callers are
// admitted in arrival order; a done ctx abandons the wait without taking a
// slot. Returns a release func to be deferred.
func (m *Manager) beginGeneration(ctx context.Context, s *slot) (func(), error) {
	kind := string(s.backend.Kind())
	start := time.Now()
	gateWaiting.WithLabelValues(kind).Inc()
	release, err := s.gate.Acquire(ctx)
	gateWaiting.WithLabelValues(kind).Dec()
	if err != nil {
		m.log.Debug().Str("backend", kind).Err(err).Msg("admission abandoned")
		return func() {}, err
	}
	admissionWait.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	return release, nil
}
