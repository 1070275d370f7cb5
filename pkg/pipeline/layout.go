package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
	"github.com/matzehuels/ged2dot/pkg/layout"
	"github.com/matzehuels/ged2dot/pkg/observability"
)

// Save lays out m as configured by cfg and writes the DOT text to w in
// cfg.OutputEncoding. Save mutates m (placeholder spouses, child order), so
// a model is saved once.
func Save(ctx context.Context, m *gedcom.Model, cfg *config.Config, w io.Writer, opts ...Option) error {
	s := newStage(opts)
	var buf bytes.Buffer
	if _, err := buildLayout(ctx, m, cfg, &buf, s); err != nil {
		return err
	}
	return encodeOutput(w, buf.Bytes(), cfg.OutputEncoding)
}

// buildLayout runs the configured strategy and writes UTF-8 DOT to w.
func buildLayout(ctx context.Context, m *gedcom.Model, cfg *config.Config, w io.Writer, s stage) (layout.Summary, error) {
	if err := ctx.Err(); err != nil {
		return layout.Summary{}, err
	}

	strategy, err := layout.New(m, cfg, nil, layout.WithLogger(s.logger))
	if err != nil {
		return layout.Summary{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, strategy.Name(), cfg.RootFamily)
	start := time.Now()

	err = strategy.Calc(ctx)
	if err == nil {
		err = strategy.Render(w)
	}
	summary := strategy.Summary()
	d := time.Since(start)
	hooks.OnLayoutComplete(ctx, strategy.Name(), summary.Families, d, err)
	if err != nil {
		return layout.Summary{}, err
	}

	s.logger.Debug("computed layout",
		"layout", strategy.Name(),
		"root", cfg.RootFamily,
		"families", summary.Families,
		"siblingFamilies", summary.SiblingFamilies,
		"rows", summary.Rows,
		"duration", d)
	return summary, nil
}

// encodeOutput writes UTF-8 text to w in the named encoding.
func encodeOutput(w io.Writer, text []byte, name string) error {
	enc, err := config.Encoding(name)
	if err != nil {
		return err
	}
	if enc == unicode.UTF8 {
		_, err := w.Write(text)
		return err
	}
	tw := transform.NewWriter(w, enc.NewEncoder())
	if _, err := tw.Write(text); err != nil {
		return err
	}
	return tw.Close()
}

// encodeBytes is encodeOutput into a new slice.
func encodeBytes(text []byte, name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeOutput(&buf, text, name); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
