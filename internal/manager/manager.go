package manager

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"routerd/internal/backend"
	"routerd/internal/gate"
	"routerd/internal/router"
	"routerd/internal/stats"
	"routerd/pkg/types"
)

// timeNow is swapped in tests.
var timeNow = time.Now

type Manager struct {
	router    *router.Router
	slots     map[types.Kind]*slot
	stats     *stats.Tracker
	publisher EventPublisher
	log       zerolog.Logger
	tokLimit  int
	startTime time.Time

	closeOnce sync.Once
	closeErr  error
}

// Router returns the routing policy.
func (m *Manager) Router() *router.Router { return m.router }

// Backend returns the backend for kind, or nil.
func (m *Manager) Backend(kind types.Kind) *backend.Backend {
	if s := m.slots[kind]; s != nil {
		return s.backend
	}
	return nil
}

// Gate returns the concurrency gate for kind, or nil.
func (m *Manager) Gate(kind types.Kind) *gate.Gate {
	if s := m.slots[kind]; s != nil {
		return s.gate
	}
	return nil
}

// MaxNewTokensLimit is the largest accepted max_new_tokens.
func (m *Manager) MaxNewTokensLimit() int { return m.tokLimit }

// Close releases engine resources. It is safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		var errs []error
		for _, k := range types.Kinds {
			if err := m.slots[k].backend.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		m.closeErr = errors.Join(errs...)
	})
	return m.closeErr
}
