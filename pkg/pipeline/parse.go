package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
	"github.com/matzehuels/ged2dot/pkg/observability"
)

// Load reads cfg.Input into a resolved model.
func Load(ctx context.Context, cfg *config.Config, opts ...Option) (*gedcom.Model, error) {
	s := newStage(opts)
	s.source = cfg.Input
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, s.source)
	start := time.Now()

	m, err := gedcom.Load(cfg.Input, s.importOptions(cfg))
	s.parsed(ctx, m, time.Since(start), err)
	return m, err
}

// parseBytes reads an in-memory GEDCOM document.
func parseBytes(ctx context.Context, input []byte, dir string, cfg *config.Config, s stage) (*gedcom.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, s.source)
	start := time.Now()

	m, err := gedcom.Read(bytes.NewReader(input), s.importOptions(cfg))
	if m != nil {
		m.Dir = dir
	}
	s.parsed(ctx, m, time.Since(start), err)
	return m, err
}

func (s stage) importOptions(cfg *config.Config) gedcom.ImportOptions {
	opts := gedcom.OptionsFromConfig(cfg)
	opts.Now = s.now
	opts.Logger = s.logger
	return opts
}

// parsed reports the end of the parse stage to the hooks and the log.
func (s stage) parsed(ctx context.Context, m *gedcom.Model, d time.Duration, err error) {
	var individuals, families int
	if m != nil {
		individuals, families = len(m.Individuals()), len(m.Families())
	}
	observability.Pipeline().OnParseComplete(ctx, s.source, individuals, families, d, err)
	if err != nil {
		return
	}
	s.logger.Debug("parsed input",
		"source", s.source,
		"individuals", individuals,
		"families", families,
		"duration", d)
}
