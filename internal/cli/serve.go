package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ged2dot/pkg/buildinfo"
	"github.com/matzehuels/ged2dot/pkg/cache"
	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/observability"
	"github.com/matzehuels/ged2dot/pkg/pipeline"
	"github.com/matzehuels/ged2dot/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	redisAddr     string
	redisPassword string
	redisDB       int
	maxBody       int64
	timeout       time.Duration
	noCache       bool
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:    server.DefaultAddr,
		maxBody: server.DefaultMaxBodyBytes,
		timeout: server.DefaultRenderTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Serve conversions over HTTP.

POST a GEDCOM document to /v1/convert and receive DOT, SVG, PNG or JPG.
Layout options are query parameters and start from the loaded config:

  curl --data-binary @family.ged 'localhost:8080/v1/convert?root=F3&format=svg'

Results are cached in Redis when --redis is given, otherwise on disk.
Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared cache (host:port)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum upload size in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request conversion timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := c.serverCache(ctx, opts)
	if err != nil {
		return err
	}

	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	// Entries written by another version may lay out differently.
	keyer := cache.NewScopedKeyer(nil, appName+":"+buildinfo.Version+":")
	runner := pipeline.NewRunner(store, keyer, logger)
	defer runner.Close()

	srv := server.New(runner, server.Options{
		Addr:          opts.addr,
		Config:        cfg,
		MaxBodyBytes:  opts.maxBody,
		RenderTimeout: opts.timeout,
		Gatherer:      prometheus.DefaultGatherer,
		Logger:        logger,
	})
	return srv.ListenAndServe(ctx)
}

// serverCache picks Redis when configured, then the file cache.
func (c *CLI) serverCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     opts.redisAddr,
		Password: opts.redisPassword,
		DB:       opts.redisDB,
		Prefix:   appName + ":",
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using redis cache", "addr", opts.redisAddr)
	return rc, nil
}
