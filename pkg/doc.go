// Package pkg provides the libraries behind ged2dot.
//
// # Overview
//
// ged2dot reads a GEDCOM genealogy file and writes a Graphviz DOT document
// that draws the families around a chosen root family as a family tree.
// The pkg directory is organized into three areas:
//
//  1. Core: [gedcom], [layout] and [dot] turn records into DOT text
//  2. Orchestration: [pipeline] runs parse, layout and render with caching
//  3. Infrastructure: [cache], [render], [server] and [observability]
//
// # Architecture
//
//	GEDCOM file or upload
//	         ↓
//	    [gedcom] package (line parser + family model)
//	         ↓
//	    [layout] package (ancestor or descendant strategy)
//	         ↓
//	    [dot] package (escaped DOT statements)
//	         ↓
//	    [render] package (optional SVG/PNG/JPG via embedded Graphviz)
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.Input = "family.ged"
//	cfg.RootFamily = "F3"
//
//	m, err := pipeline.Load(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	return pipeline.Save(ctx, m, cfg, os.Stdout)
//
// # Main Packages
//
// [config] - Conversion settings: TOML file, defaults and validation.
//
// [errors] - Coded errors shared by the CLI and the HTTP server.
//
// [gedcom] - Tolerant GEDCOM import. Individuals and families are kept in
// input order; references are resolved after the whole file is read.
//
// [layout] - The two layout strategies. Ancestors walks up from the root
// family and adds siblings; descendants walks down and groups generations
// into rank-aligned subgraphs.
//
// [pipeline] - Parse → layout → render, shared by CLI and server. The
// [pipeline.Runner] caches DOT and rendered artifacts by content hash.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [server] - HTTP API around the runner, with Prometheus metrics.
//
// [buildinfo] - Version information set at build time.
//
// [config]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/errors
// [gedcom]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/gedcom
// [layout]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/layout
// [dot]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/ged2dot/pkg/buildinfo
package pkg
