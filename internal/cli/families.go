package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
	"github.com/matzehuels/ged2dot/pkg/pipeline"
)

// familiesCommand lists the families of a file to help pick a root family.
func (c *CLI) familiesCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "families [file]",
		Short: "List the families in a GEDCOM file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd.Flags(), cfg, args); err != nil {
				return err
			}
			return runFamilies(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags.register(cmd.Flags())
	completeLayouts(cmd)
	return cmd
}

func runFamilies(ctx context.Context, cfg *config.Config, w io.Writer) error {
	m, err := pipeline.Load(ctx, cfg, pipeline.WithLogger(loggerFromContext(ctx)))
	if err != nil {
		return err
	}

	families := m.Families()
	if len(families) == 0 {
		printInfo("No families in %s", cfg.Input)
		return nil
	}

	fmt.Fprintln(w, familiesTable(families, cfg.RootFamily))
	if m.Family(cfg.RootFamily) == nil {
		printWarning("Root family %s not found", cfg.RootFamily)
	}
	printDetail("%d families, %d individuals · root %s", len(families), len(m.Individuals()), cfg.RootFamily)
	return nil
}

// familiesTable renders one row per family; the root family is highlighted.
func familiesTable(families []*gedcom.Family, root string) *table.Table {
	rows := make([][]string, 0, len(families))
	rootRow := -1
	for i, f := range families {
		if f.ID == root {
			rootRow = i
		}
		rows = append(rows, []string{
			f.ID,
			spouseName(f.Husb, f.HusbID),
			spouseName(f.Wife, f.WifeID),
			strconv.Itoa(len(f.Children)),
		})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("FAMILY", "HUSBAND", "WIFE", "CHILDREN").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == rootRow:
				return cellStyle.Foreground(colorGreen)
			default:
				return cellStyle
			}
		})
}

// spouseName shows a resolved spouse by name, an unresolved reference by
// its id, and a missing spouse as "?".
func spouseName(i *gedcom.Individual, id string) string {
	switch {
	case i != nil:
		return i.FullName() + " (" + i.ID + ")"
	case id != "":
		return id + " (missing)"
	default:
		return "?"
	}
}
