package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/pipeline"
)

// convertCommand creates the convert command, the plain GEDCOM to DOT
// conversion. It never touches the cache.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a GEDCOM file to Graphviz DOT",
		Long: `Convert a GEDCOM file to Graphviz DOT.

The input defaults to the "input" key of the config file. The DOT text is
written to stdout unless -o is given:

  ged2dot convert family.ged --root F3 --depth 4 -o family.dot
  dot -Tsvg family.dot > family.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd.Flags(), cfg, args); err != nil {
				return err
			}
			return runConvert(cmd.Context(), cfg, output, cmd.OutOrStdout())
		},
	}

	flags.register(cmd.Flags())
	completeLayouts(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// runConvert loads cfg.Input and writes the DOT text to output, or to
// stdout when output is empty.
func runConvert(ctx context.Context, cfg *config.Config, output string, stdout io.Writer) (err error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	m, err := pipeline.Load(ctx, cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d individuals, %d families", len(m.Individuals()), len(m.Families()))

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if err := pipeline.Save(ctx, m, cfg, w, pipeline.WithLogger(logger)); err != nil {
		return err
	}
	if output != "" {
		prog.done(fmt.Sprintf("Wrote %s", output))
		printNextStep("Render it", "dot -Tsvg "+output)
	}
	return nil
}
