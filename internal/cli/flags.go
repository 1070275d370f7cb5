package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/ged2dot/pkg/config"
)

// layoutFlags are the configuration overrides shared by convert, render
// and families. Only flags the user set override the config file.
type layoutFlags struct {
	root               string
	layout             string
	depth              int
	siblingDepth       int
	siblingFamilyDepth int
	exclude            []string
	anon               bool
	images             bool
	inputEncoding      string
	outputEncoding     string
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.root, "root", "r", "", "root family id (default from config, F1)")
	fs.StringVarP(&f.layout, "layout", "l", "", "layout: ancestors (default), descendants")
	fs.IntVarP(&f.depth, "depth", "d", config.DefaultMaxDepth, "number of generations to show")
	fs.IntVar(&f.siblingDepth, "sibling-depth", config.SameAsMaxDepth, "generations where sibling spouses are shown (-1: same as --depth)")
	fs.IntVar(&f.siblingFamilyDepth, "sibling-family-depth", config.DefaultMaxSiblingFamilyDepth, "generations where sibling children are shown")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "individual ids to leave out (comma-separated)")
	fs.BoolVar(&f.anon, "anon", false, "hide names and dates")
	fs.BoolVar(&f.images, "images", false, "use image labels")
	fs.StringVar(&f.inputEncoding, "input-encoding", config.DefaultEncoding, "character set of the GEDCOM input")
	fs.StringVar(&f.outputEncoding, "output-encoding", config.DefaultEncoding, "character set of the DOT output")
}

// completeLayouts registers shell completion for --layout on cmd.
func completeLayouts(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("layout", cobra.FixedCompletions(
		[]string{"ancestors", "descendants"}, cobra.ShellCompDirectiveNoFileComp))
}

// apply overrides cfg with the flags set on the command line. The input
// argument, when given, replaces cfg.Input.
func (f *layoutFlags) apply(fs *pflag.FlagSet, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if fs.Changed("root") {
		cfg.RootFamily = f.root
	}
	if fs.Changed("layout") {
		cfg.Layout = f.layout
	}
	if fs.Changed("depth") {
		cfg.LayoutMaxDepth = f.depth
	}
	if fs.Changed("sibling-depth") {
		cfg.LayoutMaxSiblingDepth = f.siblingDepth
	}
	if fs.Changed("sibling-family-depth") {
		cfg.LayoutMaxSiblingFamilyDepth = f.siblingFamilyDepth
	}
	if fs.Changed("exclude") {
		cfg.IndiBlacklist = f.exclude
	}
	if fs.Changed("anon") {
		cfg.AnonMode = f.anon
	}
	if fs.Changed("images") {
		cfg.Images = f.images
	}
	if fs.Changed("input-encoding") {
		cfg.InputEncoding = f.inputEncoding
	}
	if fs.Changed("output-encoding") {
		cfg.OutputEncoding = f.outputEncoding
	}
	return cfg.Validate()
}
