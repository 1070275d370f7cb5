// Package config holds the conversion settings consumed by the layout core.
//
// Settings come from three places, later ones winning: the built-in defaults
// ([Default]), a TOML file with a [ged2dot] table ([Load]), and command-line
// flags applied by the caller. The core treats the resulting [Config] as
// read-only.
//
// Key names follow the classic ged2dotrc option names:
//
//	[ged2dot]
//	input = "family.ged"
//	rootFamily = "F1"
//	layoutMaxDepth = 5
//	layout = "descendants"
//	indiBlacklist = ["P526", "P525"]
package config

import (
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
)

// Default values for configuration options.
const (
	DefaultInput                 = "input.ged"
	DefaultRootFamily            = "F1"
	DefaultConsiderAgeDead       = 120
	DefaultMaxDepth              = 5
	DefaultMaxSiblingFamilyDepth = 1
	DefaultEncoding              = "UTF-8"
	DefaultImageFormat           = "images/%(forename)s %(surname)s %(birt)s.jpg"

	// DefaultNodeLabelPlain is an already quoted DOT string; \n stays literal
	// so Graphviz breaks the label into lines.
	DefaultNodeLabelPlain = `"%(forename)s\n%(surname)s\n%(birt)s-%(deat)s"`

	DefaultNodeLabelImage = `<<table border="0" cellborder="0"><tr><td><img src="%(picture)s"/></td></tr><tr><td>%(forename)s<br/>%(surname)s<br/>%(birt)s-%(deat)s</td></tr></table>>`

	// NodeLabelImageSwapped shows the surname first.
	NodeLabelImageSwapped = `<<table border="0" cellborder="0"><tr><td><img src="%(picture)s"/></td></tr><tr><td>%(surname)s<br/>%(forename)s<br/>%(birt)s-%(deat)s</td></tr></table>>`

	// SameAsMaxDepth makes LayoutMaxSiblingDepth follow LayoutMaxDepth.
	SameAsMaxDepth = -1
)

// Config is the resolved set of conversion options.
type Config struct {
	Input      string `toml:"input"`
	RootFamily string `toml:"rootFamily"`

	// ConsiderAgeDead is the age after which a missing death date is shown as "?".
	ConsiderAgeDead int `toml:"considerAgeDead"`

	// AnonMode hides names and dates in the output.
	AnonMode bool `toml:"anonMode"`

	Images         bool   `toml:"images"`
	ImageFormat    string `toml:"imageFormat"`
	NodeLabelImage string `toml:"nodeLabelImage"`
	NodeLabelPlain string `toml:"nodeLabelPlain"`
	PlaceholderDir string `toml:"placeholderDir"`

	// EdgeInvisibleRed draws ordering-only edges in red for debugging.
	EdgeInvisibleRed bool `toml:"edgeInvisibleRed"`
	// EdgeVisibleDirected keeps arrowheads on visible edges for debugging.
	EdgeVisibleDirected bool `toml:"edgeVisibleDirected"`

	LayoutMaxDepth int `toml:"layoutMaxDepth"`
	// LayoutMaxSiblingDepth is the number of generations where sibling
	// spouses are shown. SameAsMaxDepth follows LayoutMaxDepth.
	LayoutMaxSiblingDepth int `toml:"layoutMaxSiblingDepth"`
	// LayoutMaxSiblingFamilyDepth is the number of generations where sibling
	// children are shown. Values >= 2 usually make edges overlap.
	LayoutMaxSiblingFamilyDepth int `toml:"layoutMaxSiblingFamilyDepth"`

	IndiBlacklist []string `toml:"indiBlacklist"`

	// Layout selects the strategy: "" or "ancestors", or "descendants".
	Layout string `toml:"layout"`

	InputEncoding  string `toml:"inputEncoding"`
	OutputEncoding string `toml:"outputEncoding"`
}

// file is the on-disk shape: everything lives in a [ged2dot] table.
type file struct {
	Ged2dot Config `toml:"ged2dot"`
}

// Default returns a Config populated with the default values.
func Default() *Config {
	return &Config{
		Input:                       DefaultInput,
		RootFamily:                  DefaultRootFamily,
		ConsiderAgeDead:             DefaultConsiderAgeDead,
		ImageFormat:                 DefaultImageFormat,
		NodeLabelImage:              DefaultNodeLabelImage,
		NodeLabelPlain:              DefaultNodeLabelPlain,
		LayoutMaxDepth:              DefaultMaxDepth,
		LayoutMaxSiblingDepth:       SameAsMaxDepth,
		LayoutMaxSiblingFamilyDepth: DefaultMaxSiblingFamilyDepth,
		InputEncoding:               DefaultEncoding,
		OutputEncoding:              DefaultEncoding,
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	f := file{Ged2dot: *Default()}
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	return &f.Ged2dot, nil
}

// Decode reads TOML from r on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	f := file{Ged2dot: *Default()}
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeInvalidConfig, err, "decode config")
	}
	return &f.Ged2dot, nil
}

// Write encodes cfg as TOML under a [ged2dot] table.
func Write(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(file{Ged2dot: *cfg})
}

// Clone returns a copy that can be modified without affecting c.
func (c *Config) Clone() *Config {
	out := *c
	out.IndiBlacklist = append([]string(nil), c.IndiBlacklist...)
	return &out
}

// MaxSiblingDepth resolves SameAsMaxDepth.
func (c *Config) MaxSiblingDepth() int {
	if c.LayoutMaxSiblingDepth == SameAsMaxDepth {
		return c.LayoutMaxDepth
	}
	return c.LayoutMaxSiblingDepth
}

// Excluded returns the blacklist as a set.
func (c *Config) Excluded() map[string]bool {
	set := make(map[string]bool, len(c.IndiBlacklist))
	for _, id := range c.IndiBlacklist {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = true
		}
	}
	return set
}

// Variant parses the Layout option.
func (c *Config) Variant() (Variant, error) {
	return ParseVariant(c.Layout)
}

// Validate checks the options the core relies on.
func (c *Config) Validate() error {
	if err := gerrors.ValidateID(c.RootFamily); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidConfig, err, "rootFamily")
	}
	if err := gerrors.ValidateDepth("layoutMaxDepth", c.LayoutMaxDepth); err != nil {
		return err
	}
	if c.LayoutMaxSiblingDepth != SameAsMaxDepth {
		if err := gerrors.ValidateDepth("layoutMaxSiblingDepth", c.LayoutMaxSiblingDepth); err != nil {
			return err
		}
	}
	if err := gerrors.ValidateDepth("layoutMaxSiblingFamilyDepth", c.LayoutMaxSiblingFamilyDepth); err != nil {
		return err
	}
	if c.ConsiderAgeDead < 0 {
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "considerAgeDead must not be negative, got %d", c.ConsiderAgeDead)
	}
	if _, err := c.Variant(); err != nil {
		return err
	}
	if _, err := Encoding(c.InputEncoding); err != nil {
		return err
	}
	if _, err := Encoding(c.OutputEncoding); err != nil {
		return err
	}
	return nil
}

// SplitList parses a comma-separated identifier list such as "P526, P525".
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
