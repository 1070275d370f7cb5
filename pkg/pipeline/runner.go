package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ged2dot/pkg/cache"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
	"github.com/matzehuels/ged2dot/pkg/observability"
	"github.com/matzehuels/ged2dot/pkg/render"
)

// Runner encapsulates conversion with caching.
// Both CLI and HTTP service use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedDOT is the cache entry for the layout stage.
type cachedDOT struct {
	DOT   []byte `json:"dot"`
	Stats Stats  `json:"stats"`
}

// Convert runs the full pipeline on an in-memory GEDCOM document.
func (r *Runner) Convert(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Format: opts.Format,
	}
	s := stage{
		logger: opts.Logger.With("run", result.RunID[:8]),
		now:    opts.Now,
		source: opts.Source,
	}

	// Stage 1+2: Parse and layout, cached together by input hash
	utf8DOT, hit, err := r.dot(ctx, input, &opts, s, result)
	if err != nil {
		return nil, err
	}
	result.CacheInfo.DOTHit = hit

	result.DOT, err = encodeBytes(utf8DOT, opts.Config.OutputEncoding)
	if err != nil {
		return nil, err
	}

	// Stage 3: Render
	if opts.Format == render.FormatDOT {
		result.Artifact = result.DOT
	} else {
		result.Artifact, result.CacheInfo.ArtifactHit, err = r.artifact(ctx, utf8DOT, &opts, s, result)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("converted",
		"source", opts.Source,
		"families", result.Stats.Layout.Families,
		"format", opts.Format,
		"bytes", len(result.Artifact),
		"cached", result.CacheInfo.DOTHit)
	return result, nil
}

// ConvertFile reads path and converts it. Image paths resolve relative to
// the file's directory.
func (r *Runner) ConvertFile(ctx context.Context, path string, opts Options) (*Result, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "input file %s", path)
		}
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	if opts.Dir == "" {
		opts.Dir = filepath.Dir(path)
	}
	return r.Convert(ctx, input, opts)
}

// dot returns UTF-8 DOT text for input, from the cache when possible.
func (r *Runner) dot(ctx context.Context, input []byte, opts *Options, s stage, result *Result) ([]byte, bool, error) {
	key := r.Keyer.DOTKey(cache.Hash(input), opts.dotKeyOpts())

	if !opts.Refresh {
		if entry, ok := r.getDOT(ctx, key, s); ok {
			result.Stats = entry.Stats
			return entry.DOT, true, nil
		}
	}

	start := time.Now()
	m, err := parseBytes(ctx, input, opts.Dir, opts.Config, s)
	if err != nil {
		return nil, false, err
	}
	result.Stats.ParseTime = time.Since(start)
	result.Stats.Individuals = len(m.Individuals())
	result.Stats.Families = len(m.Families())

	start = time.Now()
	var buf bytes.Buffer
	summary, err := buildLayout(ctx, m, opts.Config, &buf, s)
	if err != nil {
		return nil, false, err
	}
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Layout = summary

	if data, err := json.Marshal(cachedDOT{DOT: buf.Bytes(), Stats: result.Stats}); err == nil {
		r.set(ctx, cache.KeyTypeDOT, key, data, cache.TTLDOT, s)
	}
	return buf.Bytes(), false, nil
}

func (r *Runner) getDOT(ctx context.Context, key string, s stage) (cachedDOT, bool) {
	data, hit := r.get(ctx, cache.KeyTypeDOT, key, s)
	if !hit {
		return cachedDOT{}, false
	}
	var entry cachedDOT
	if err := json.Unmarshal(data, &entry); err != nil || len(entry.DOT) == 0 {
		// Undecodable entry, recompute
		return cachedDOT{}, false
	}
	return entry, true
}

// artifact returns the rendered image for UTF-8 DOT text, from the cache
// when possible.
func (r *Runner) artifact(ctx context.Context, dot []byte, opts *Options, s stage, result *Result) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(cache.Hash(dot), cache.ArtifactKeyOpts{Format: opts.Format})

	if !opts.Refresh {
		if data, hit := r.get(ctx, cache.KeyTypeArtifact, key, s); hit {
			return data, true, nil
		}
	}

	data, d, err := renderArtifact(ctx, dot, opts.Format, s)
	if err != nil {
		return nil, false, err
	}
	result.Stats.RenderTime = d
	r.set(ctx, cache.KeyTypeArtifact, key, data, cache.TTLArtifact, s)
	return data, false, nil
}

// get reads key and reports the outcome to the cache hooks. Backend errors
// are logged and treated as misses.
func (r *Runner) get(ctx context.Context, keyType, key string, s stage) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "type", keyType, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// set writes key and reports it to the cache hooks. Failures only cost a
// later recomputation, so they are logged and dropped.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, s stage) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
