// Package app assembles routerd from configuration: engines, backends,
// gates, stats, the manager and the HTTP mux, once, at startup.
package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"routerd/internal/backend"
	"routerd/internal/config"
	"routerd/internal/engine"
	"routerd/internal/httpapi"
	"routerd/internal/manager"
	"routerd/internal/registry"
	"routerd/internal/router"
	"routerd/pkg/types"
)

// App is a fully wired routerd instance.
type App struct {
	Config  config.Config
	Manager *manager.Manager
	Handler http.Handler
	Logger  zerolog.Logger
}

// Options tweak Build for embedding and tests.
type Options struct {
	// Publisher receives manager events; nil drops them.
	Publisher manager.EventPublisher
	// OpenEngine replaces engine.Open.
	OpenEngine func(engine.Spec) (engine.Engine, error)
}

// Build wires an App from cfg. It does not contact any engine.
func Build(cfg config.Config, lg zerolog.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	open := opts.OpenEngine
	if open == nil {
		open = engine.Open
	}
	tmpls, err := backend.CompileTemplates(cfg.Templates)
	if err != nil {
		return nil, err
	}
	small, err := newBackend(types.KindSmall, cfg.Backends.Small, backend.DefaultSmallDecoding(), engine.TaskTextGeneration, tmpls, open, lg)
	if err != nil {
		return nil, err
	}
	large, err := newBackend(types.KindLarge, cfg.Backends.Large, backend.DefaultLargeDecoding(), engine.TaskText2Text, tmpls, open, lg)
	if err != nil {
		return nil, err
	}
	mgr, err := manager.NewWithConfig(manager.ManagerConfig{
		Router:            router.New(cfg.Router.ThresholdChars, cfg.Router.PermissiveModes),
		Small:             small,
		Large:             large,
		SmallCapacity:     cfg.Backends.Small.Capacity,
		LargeCapacity:     cfg.Backends.Large.Capacity,
		MaxNewTokensLimit: cfg.MaxNewTokensLimit,
		Publisher:         opts.Publisher,
		Logger:            &lg,
	})
	if err != nil {
		return nil, err
	}

	httpapi.SetLogger(lg)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetChatTimeoutSeconds(cfg.ChatTimeoutSeconds)
	httpapi.SetDefaultMaxNewTokens(manager.DefaultMaxNewTokens)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)

	return &App{Config: cfg, Manager: mgr, Handler: httpapi.NewMux(mgr), Logger: lg}, nil
}

func newBackend(kind types.Kind, bc config.Backend, base engine.Decoding, task engine.Task, tmpls backend.Templates, open func(engine.Spec) (engine.Engine, error), lg zerolog.Logger) (*backend.Backend, error) {
	tmpl, err := tmpls.Lookup(bc.Template)
	if err != nil {
		return nil, fmt.Errorf("backends.%s: %w", kind, err)
	}
	spec := bc.EngineSpec()
	if spec.Task == "" {
		spec.Task = task
	}
	if strings.EqualFold(spec.Type, "llama") && spec.ModelsDir != "" {
		logLocalModels(lg, kind, spec.ModelsDir)
	}
	return backend.New(backend.Config{
		Kind:            kind,
		Model:           bc.Model,
		EngineType:      strings.ToLower(bc.Engine),
		Open:            func() (engine.Engine, error) { return open(spec) },
		Decoding:        bc.Decoding.Apply(base),
		MaxNewTokensCap: bc.MaxNewTokensCap,
		Template:        tmpl,
		Logger:          lg,
	})
}

// logLocalModels lists the .gguf files a llama backend can resolve.
func logLocalModels(lg zerolog.Logger, kind types.Kind, dir string) {
	models, err := registry.LoadDir(dir)
	if err != nil {
		lg.Warn().Str("backend", string(kind)).Str("models_dir", dir).Err(err).Msg("cannot scan models dir")
		return
	}
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	lg.Info().Str("backend", string(kind)).Str("models_dir", dir).Strs("models", ids).Msg("local models")
}
