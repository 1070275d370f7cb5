// Package cli implements the ged2dot command-line interface.
//
// # Commands
//
//   - convert: write the DOT description of a GEDCOM file
//   - render: render it to SVG, PNG or JPG with the embedded Graphviz
//   - families: list the families of a file to pick a root family
//   - serve: expose the conversion over HTTP
//   - config: print the effective configuration
//   - cache: manage the render cache
//
// Every command reads ged2dot.toml from the working directory when present,
// or the file named by --config. Command-line flags override it.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli
