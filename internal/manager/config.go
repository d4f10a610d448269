package manager

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"routerd/internal/backend"
	"routerd/internal/gate"
	"routerd/internal/router"
	"routerd/internal/stats"
	"routerd/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	DefaultMaxNewTokens      = 120
	defaultMaxNewTokensLimit = 4096
	defaultSmallCapacity     = 2
	defaultLargeCapacity     = 1
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Router *router.Router
	Small  *backend.Backend
	Large  *backend.Backend
	// Gate capacities; zero means package default (small 2, large 1).
	SmallCapacity int
	LargeCapacity int
	// MaxNewTokensLimit rejects larger requests before routing.
	MaxNewTokensLimit int
	// Stats defaults to a fresh tracker.
	Stats     *stats.Tracker
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) (*Manager, error) {
	if cfg.Small == nil || cfg.Large == nil {
		return nil, errors.New("manager: both small and large backends are required")
	}
	if cfg.Small.Kind() != types.KindSmall || cfg.Large.Kind() != types.KindLarge {
		return nil, fmt.Errorf("manager: backend kinds mismatch (got %s, %s)", cfg.Small.Kind(), cfg.Large.Kind())
	}
	m := &Manager{
		router:    cfg.Router,
		stats:     cfg.Stats,
		publisher: cfg.Publisher,
		tokLimit:  cfg.MaxNewTokensLimit,
		slots:     make(map[types.Kind]*slot, 2),
	}
	if m.router == nil {
		m.router = router.New(router.DefaultThreshold, false)
	}
	if m.stats == nil {
		m.stats = stats.New()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.tokLimit <= 0 {
		m.tokLimit = defaultMaxNewTokensLimit
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	} else {
		m.log = zerolog.Nop()
	}
	smallCap := cfg.SmallCapacity
	if smallCap <= 0 {
		smallCap = defaultSmallCapacity
	}
	largeCap := cfg.LargeCapacity
	if largeCap <= 0 {
		largeCap = defaultLargeCapacity
	}
	m.slots[types.KindSmall] = newSlot(cfg.Small, gate.New(string(types.KindSmall), smallCap))
	m.slots[types.KindLarge] = newSlot(cfg.Large, gate.New(string(types.KindLarge), largeCap))
	m.startTime = timeNow()
	return m, nil
}
