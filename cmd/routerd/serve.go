package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"routerd/internal/app"
	"routerd/internal/httpapi"
	"routerd/internal/logging"
)

func buildServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API and the browser UI",
		Example: "  routerd serve --addr :8000\n  routerd serve --config routerd.yaml --warmup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, o)
		},
	}
	cmd.Flags().DurationVar(&o.shutdownTimeout, "shutdown-timeout", 5*time.Second, "Grace period for in-flight requests on shutdown")
	return cmd
}

func runServe(cmd *cobra.Command, o *options) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}
	lg := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	a, err := app.Build(cfg, lg, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Manager.Close(); err != nil {
			lg.Warn().Err(err).Msg("closing engines")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	if cfg.Warmup {
		if err := a.Manager.Warmup(ctx); err != nil {
			lg.Warn().Err(err).Msg("warmup failed; engines will initialise on first request")
		} else {
			lg.Info().Msg("warmup complete")
		}
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: a.Handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		lg.Info().
			Str("addr", cfg.Addr).
			Str("small", cfg.Backends.Small.Model).
			Str("large", cfg.Backends.Large.Model).
			Int("threshold_chars", cfg.Router.ThresholdChars).
			Msg("routerd listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		fmt.Fprintln(os.Stderr, "graceful shutdown error:", err)
	}
	return nil
}
