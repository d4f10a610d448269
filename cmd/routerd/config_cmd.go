package main

import (
	"github.com/spf13/cobra"

	"routerd/internal/config"
)

func buildConfigCmd(o *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Print the effective configuration",
		Example: "  routerd config --config routerd.yaml --format toml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			out, err := config.Encode(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml|json|toml")
	return cmd
}
