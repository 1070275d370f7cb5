package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/ged2dot/pkg/observability"
	"github.com/matzehuels/ged2dot/pkg/render"
)

// renderArtifact lays out UTF-8 DOT text with Graphviz.
func renderArtifact(ctx context.Context, dot []byte, format string, s stage) ([]byte, time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := render.Render(ctx, dot, format)
	d := time.Since(start)
	hooks.OnRenderComplete(ctx, format, len(data), d, err)
	if err != nil {
		return nil, d, err
	}

	s.logger.Debug("rendered artifact", "format", format, "bytes", len(data), "duration", d)
	return data, d, nil
}
