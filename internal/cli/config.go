package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ged2dot/pkg/config"
)

// configCommand prints the effective configuration as TOML, which is a
// convenient starting point for a ged2dot.toml.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as TOML.

  ged2dot config --default > ged2dot.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				var err error
				if cfg, err = c.loadConfig(); err != nil {
					return err
				}
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&defaults, "default", false, "print the built-in defaults, ignoring any config file")
	return cmd
}
