package manager

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"routerd/pkg/types"
)

// Warmup initializes both engines concurrently and returns the first
// failure. A failing backend does not stop the other; it stays
// uninitialized and is retried on its next request.
func (m *Manager) Warmup(ctx context.Context) error {
	var g errgroup.Group
	for _, k := range types.Kinds {
		k := k
		s := m.slots[k]
		g.Go(func() error {
			start := time.Now()
			err := s.backend.Init(ctx)
			fields := map[string]any{"duration_ms": time.Since(start).Milliseconds()}
			if err != nil {
				fields["error"] = err.Error()
			}
			m.publish(EventWarmup, string(k), fields)
			return err
		})
	}
	return g.Wait()
}
