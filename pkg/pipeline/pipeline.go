// Package pipeline runs a GEDCOM file through the whole conversion.
//
// This package implements the parse → layout → render pipeline that the CLI
// and the HTTP service share, so both produce byte-identical output.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode the input and build a resolved [gedcom.Model]
//  2. Layout: select the strategy from the configuration, calculate the
//     rows and write DOT text
//  3. Render: optionally lay out the DOT text with Graphviz (SVG, PNG, JPG)
//
// # Usage
//
// The two collaborator functions mirror a plain file-to-file conversion:
//
//	m, err := pipeline.Load(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	err = pipeline.Save(ctx, m, cfg, os.Stdout)
//
// A [Runner] adds caching, run ids and statistics:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Convert(ctx, input, pipeline.Options{
//	    Config: cfg,
//	    Format: render.FormatSVG,
//	})
//	svg := result.Artifact
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ged2dot/pkg/cache"
	"github.com/matzehuels/ged2dot/pkg/config"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
	"github.com/matzehuels/ged2dot/pkg/layout"
	"github.com/matzehuels/ged2dot/pkg/render"
)

// SourceRequest names input that did not come from a file.
const SourceRequest = "request"

// =============================================================================
// Options - Conversion Configuration
// =============================================================================

// Options configures one Runner conversion.
type Options struct {
	// Config holds the conversion settings. Nil uses config.Default().
	Config *config.Config

	// Format is the output format, one of render.Formats. Empty means DOT.
	Format string

	// Source names the input in logs and hooks, e.g. a file name.
	Source string

	// Dir is the directory image paths are resolved against.
	Dir string

	// Refresh bypasses cache reads; results are still written.
	Refresh bool

	// Now returns the reference time for death inference. Defaults to time.Now.
	Now func() time.Time

	// Logger overrides the runner's logger for this conversion.
	Logger *log.Logger
}

// setDefaults fills unset fields and validates the configuration.
func (o *Options) setDefaults() error {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Format == "" {
		o.Format = render.FormatDOT
	}
	if o.Source == "" {
		o.Source = SourceRequest
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if !render.ValidFormat(o.Format) {
		return gerrors.New(gerrors.ErrCodeInvalidFormat, "unsupported output format %q", o.Format)
	}
	return o.Config.Validate()
}

// dotKeyOpts returns the cache key options that influence the DOT output.
// Every configuration field takes part, so a new option can never be served
// another option's entry. Only fields that cannot change the cached UTF-8
// text are cleared.
func (o *Options) dotKeyOpts() cache.DOTKeyOpts {
	cfg := o.Config.Clone()
	cfg.Input = ""          // the input hash covers the content
	cfg.OutputEncoding = "" // applied after the cache
	cfg.LayoutMaxSiblingDepth = cfg.MaxSiblingDepth()

	opts := cache.DOTKeyOpts{Year: o.Now().Year()}
	if cfg.Images {
		opts.Dir = o.Dir
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config holds only strings, ints, bools and a string slice.
		panic("pipeline: encode settings: " + err.Error())
	}
	opts.Settings = cache.Hash(data)
	return opts
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of one conversion.
type Result struct {
	// RunID identifies the conversion in logs.
	RunID string

	// DOT is the graph description in the configured output encoding.
	DOT []byte

	// Artifact is the rendered image, or DOT again when Format is "dot".
	Artifact []byte

	// Format is the format of Artifact.
	Format string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains conversion statistics. Counts are zero-valued when the
// DOT text came from a cache entry written by an older release.
type Stats struct {
	Individuals int            `json:"individuals"`
	Families    int            `json:"families"`
	Layout      layout.Summary `json:"layout"`

	ParseTime  time.Duration `json:"-"`
	LayoutTime time.Duration `json:"-"`
	RenderTime time.Duration `json:"-"`
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	DOTHit      bool
	ArtifactHit bool
}

// =============================================================================
// Stage Options
// =============================================================================

// Option configures Load and Save.
type Option func(*stage)

type stage struct {
	logger *log.Logger
	now    func() time.Time
	source string
}

func newStage(opts []Option) stage {
	s := stage{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger sets the logger for a stage.
func WithLogger(l *log.Logger) Option {
	return func(s *stage) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow sets the reference time used for death inference.
func WithNow(now func() time.Time) Option {
	return func(s *stage) {
		if now != nil {
			s.now = now
		}
	}
}
