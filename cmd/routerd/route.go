package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"routerd/internal/app"
	"routerd/internal/logging"
	"routerd/internal/manager"
	"routerd/internal/router"
	"routerd/pkg/types"
)

// routeDecision is printed by `route --dry-run`.
type routeDecision struct {
	Backend      string `json:"backend"`
	Model        string `json:"model"`
	RoutedReason string `json:"routed_reason"`
	PromptChars  int    `json:"prompt_chars"`
}

func buildRouteCmd(o *options) *cobra.Command {
	var (
		mode         string
		maxNewTokens int
		dryRun       bool
	)
	cmd := &cobra.Command{
		Use:     "route [prompt...]",
		Short:   "Route one prompt and print the JSON response (reads stdin when no prompt is given)",
		Example: "  routerd route \"What is Apple?\"\n  routerd route --dry-run --mode large \"test\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt: %w", err)
				}
				prompt = strings.TrimRight(string(b), "\n")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if dryRun {
				r := router.New(cfg.Router.ThresholdChars, cfg.Router.PermissiveModes)
				m, err := r.ParseMode(mode)
				if err != nil {
					return err
				}
				d := r.Route(prompt, m)
				model := cfg.Backends.Small.Model
				if d.Kind == types.KindLarge {
					model = cfg.Backends.Large.Model
				}
				return enc.Encode(routeDecision{
					Backend:      string(d.Kind),
					Model:        model,
					RoutedReason: string(d.Reason),
					PromptChars:  len([]rune(prompt)),
				})
			}

			lg := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			a, err := app.Build(cfg, lg, app.Options{})
			if err != nil {
				return err
			}
			defer a.Manager.Close()
			resp, err := a.Manager.Chat(cmd.Context(), types.ChatRequest{Prompt: prompt, MaxNewTokens: maxNewTokens, Mode: mode})
			if err != nil {
				return err
			}
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "auto", "Routing mode: auto|small|large")
	cmd.Flags().IntVar(&maxNewTokens, "max-new-tokens", manager.DefaultMaxNewTokens, "Requested new tokens (each backend caps it)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the routing decision without generating")
	return cmd
}
