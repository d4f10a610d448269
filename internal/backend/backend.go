// Package backend wraps an engine with a fixed decoding policy and prompt
// template. The engine is created on first use and then kept.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"routerd/internal/engine"
	"routerd/pkg/types"
)

// State is the lifecycle state of a backend's engine.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Opener creates the engine. It is called until it succeeds.
type Opener func() (engine.Engine, error)

// Config describes one backend.
type Config struct {
	Kind       types.Kind
	Model      string
	EngineType string
	Open       Opener
	Decoding   engine.Decoding
	// MaxNewTokensCap bounds every request's token budget.
	MaxNewTokensCap int
	Template        *Template
	Logger          zerolog.Logger
}

// Backend is safe for concurrent use; callers bound concurrency.
type Backend struct {
	kind       types.Kind
	model      string
	engineType string
	open       Opener
	decoding   engine.Decoding
	capTokens  int
	tmpl       *Template
	log        zerolog.Logger

	// initMu serializes engine creation; mu guards the fields below and is
	// never held across open.
	initMu  sync.Mutex
	mu      sync.Mutex
	eng     engine.Engine
	state   State
	lastErr string
}

// New validates cfg and returns an idle backend.
func New(cfg Config) (*Backend, error) {
	if cfg.Open == nil {
		return nil, errors.New("backend: Open is required")
	}
	if cfg.Template == nil {
		return nil, errors.New("backend: Template is required")
	}
	if cfg.MaxNewTokensCap <= 0 {
		return nil, fmt.Errorf("backend %s: max_new_tokens cap must be positive", cfg.Kind)
	}
	return &Backend{
		kind:       cfg.Kind,
		model:      cfg.Model,
		engineType: cfg.EngineType,
		open:       cfg.Open,
		decoding:   cfg.Decoding,
		capTokens:  cfg.MaxNewTokensCap,
		tmpl:       cfg.Template,
		log:        cfg.Logger.With().Str("backend", string(cfg.Kind)).Str("model", cfg.Model).Logger(),
		state:      StateIdle,
	}, nil
}

func (b *Backend) Kind() types.Kind     { return b.kind }
func (b *Backend) Model() string        { return b.model }
func (b *Backend) EngineType() string   { return b.engineType }
func (b *Backend) MaxNewTokensCap() int { return b.capTokens }
func (b *Backend) TemplateName() string { return b.tmpl.Name() }

// State returns the engine state and the last initialization error.
func (b *Backend) State() (State, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.lastErr
}

// Ready reports whether the engine has been created.
func (b *Backend) Ready() bool {
	st, _ := b.State()
	return st == StateReady
}

// Init creates the engine if needed. Concurrent callers wait for a single
// attempt; a failed attempt is not cached.
func (b *Backend) Init(ctx context.Context) error {
	_, err := b.engine(ctx)
	return err
}

func (b *Backend) engine(ctx context.Context) (engine.Engine, error) {
	if eng := b.current(); eng != nil {
		return eng, nil
	}
	b.initMu.Lock()
	defer b.initMu.Unlock()
	if eng := b.current(); eng != nil {
		return eng, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.setState(StateLoading, "")
	b.log.Info().Str("engine", b.engineType).Msg("initializing engine")
	eng, err := b.open()
	if err != nil {
		b.setState(StateError, err.Error())
		b.log.Error().Err(err).Msg("engine init failed")
		return nil, fmt.Errorf("init %s engine: %w", b.kind, err)
	}
	b.mu.Lock()
	b.eng = eng
	b.state = StateReady
	b.lastErr = ""
	b.mu.Unlock()
	b.log.Info().Msg("engine ready")
	return eng, nil
}

func (b *Backend) current() engine.Engine {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng
}

func (b *Backend) setState(st State, errMsg string) {
	b.mu.Lock()
	b.state, b.lastErr = st, errMsg
	b.mu.Unlock()
}

// EffectiveTokens clamps a requested token budget to the backend cap.
func (b *Backend) EffectiveTokens(requested int) int {
	return min(requested, b.capTokens)
}

// Generate renders prompt through the template, runs the engine with the
// fixed decoding policy and returns the first generation, trimmed.
func (b *Backend) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	eng, err := b.engine(ctx)
	if err != nil {
		return "", err
	}
	input, err := b.tmpl.Render(prompt)
	if err != nil {
		return "", err
	}
	d := b.decoding
	d.MaxNewTokens = b.EffectiveTokens(maxNewTokens)
	gens, err := eng.Generate(ctx, input, d)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", b.kind, err)
	}
	if len(gens) == 0 {
		return "", fmt.Errorf("%s generate: engine returned no output", b.kind)
	}
	return strings.TrimSpace(gens[0].GeneratedText), nil
}

// Close releases native engine resources, if any.
func (b *Backend) Close() error {
	b.initMu.Lock()
	defer b.initMu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.eng.(engine.Closer); ok {
		b.eng = nil
		b.state = StateIdle
		return c.Close()
	}
	return nil
}
