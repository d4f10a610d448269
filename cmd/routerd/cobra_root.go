package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"routerd/internal/common/fsutil"
	"routerd/internal/config"
)

// options collects flag values shared by every subcommand. Flags only
// override the config file when set explicitly.
type options struct {
	configPath string
	logLevel   string
	logFormat  string

	addr          string
	threshold     int
	permissive    bool
	warmup        bool
	corsOrigins   string
	chatTimeout   int64
	smallEngine   string
	largeEngine   string
	smallEndpoint string
	largeEndpoint string

	shutdownTimeout time.Duration
}

// buildRootCmd constructs the routerd command tree.
func buildRootCmd() *cobra.Command {
	o := &options{configPath: os.Getenv("ROUTERD_CONFIG")}
	def := config.Default()

	root := &cobra.Command{
		Use:           "routerd",
		Short:         "Route prompts to a small or a large text-generation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", o.configPath, "Config file (.yaml|.yml|.json|.toml); defaults ROUTERD_CONFIG")
	pf.StringVar(&o.logLevel, "log-level", def.LogLevel, "Log level: trace|debug|info|warn|error|off")
	pf.StringVar(&o.logFormat, "log-format", def.LogFormat, "Log format: console|json")
	pf.StringVar(&o.addr, "addr", def.Addr, "HTTP listen address; defaults ROUTERD_ADDR")
	pf.IntVar(&o.threshold, "threshold", def.Router.ThresholdChars, "Prompt length in characters at which auto mode picks the large backend")
	pf.BoolVar(&o.permissive, "permissive-modes", false, "Route unknown modes as auto instead of rejecting them")
	pf.BoolVar(&o.warmup, "warmup", false, "Initialise both engines before serving")
	pf.StringVar(&o.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")
	pf.Int64Var(&o.chatTimeout, "chat-timeout-seconds", 0, "Per-request chat timeout in seconds (0 disables)")
	pf.StringVar(&o.smallEngine, "small-engine", def.Backends.Small.Engine, "Engine for the small backend: pipeline|openai|llama|echo")
	pf.StringVar(&o.largeEngine, "large-engine", def.Backends.Large.Engine, "Engine for the large backend: pipeline|openai|llama|echo")
	pf.StringVar(&o.smallEndpoint, "small-endpoint", def.Backends.Small.Endpoint, "Server URL for the small backend")
	pf.StringVar(&o.largeEndpoint, "large-endpoint", def.Backends.Large.Endpoint, "Server URL for the large backend")

	root.AddCommand(buildServeCmd(o), buildRouteCmd(o), buildConfigCmd(o))

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	root.AddCommand(completionCmd)

	return root
}

// resolve loads the effective configuration: defaults, then the config
// file, then ROUTERD_ADDR, then explicitly set flags.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		path, err := fsutil.ExpandHome(o.configPath)
		if err != nil {
			return cfg, err
		}
		file, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = config.Merge(cfg, file)
	}
	if v := os.Getenv("ROUTERD_ADDR"); v != "" {
		cfg.Addr = v
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if changed("addr") {
		cfg.Addr = o.addr
	}
	if changed("threshold") {
		cfg.Router.ThresholdChars = o.threshold
	}
	if changed("permissive-modes") {
		cfg.Router.PermissiveModes = o.permissive
	}
	if changed("warmup") {
		cfg.Warmup = o.warmup
	}
	if changed("cors-origins") {
		cfg.CORS.Origins = splitCSV(o.corsOrigins)
		cfg.CORS.Enabled = len(cfg.CORS.Origins) > 0
	}
	if changed("chat-timeout-seconds") {
		cfg.ChatTimeoutSeconds = o.chatTimeout
	}
	if changed("small-engine") {
		cfg.Backends.Small.Engine = o.smallEngine
	}
	if changed("large-engine") {
		cfg.Backends.Large.Engine = o.largeEngine
	}
	if changed("small-endpoint") {
		cfg.Backends.Small.Endpoint = o.smallEndpoint
	}
	if changed("large-endpoint") {
		cfg.Backends.Large.Endpoint = o.largeEndpoint
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
