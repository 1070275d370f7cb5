package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/pipeline"
	"github.com/matzehuels/ged2dot/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path (derived from the input when empty)
	format  string // svg, png, jpg or dot
	noCache bool   // disable the artifact cache
	refresh bool   // recompute even when cached
}

// renderCommand creates the render command, which lays the DOT output out
// with the embedded Graphviz and caches the result by content hash.
func (c *CLI) renderCommand() *cobra.Command {
	var flags layoutFlags
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a GEDCOM file to SVG or PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !render.ValidFormat(opts.format) {
				return fmt.Errorf("invalid format: %s (must be one of: %s)", opts.format, strings.Join(render.Formats, ", "))
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd.Flags(), cfg, args); err != nil {
				return err
			}
			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			return runRender(cmd.Context(), runner, cfg, &opts)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, jpg, dot")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	completeLayouts(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(render.Formats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// outputPath derives the output file from the input when none is given.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

func runRender(ctx context.Context, runner *pipeline.Runner, cfg *config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", cfg.Input)

	result, err := runner.ConvertFile(ctx, cfg.Input, pipeline.Options{
		Config:  cfg,
		Format:  opts.format,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	out := outputPath(opts.output, cfg.Input, opts.format)
	if err := os.WriteFile(out, result.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printSuccess("Rendered %s", opts.format)
	printFile(out)
	printStats(result.Stats, result.CacheInfo.DOTHit)
	return nil
}
