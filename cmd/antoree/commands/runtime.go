package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/yshengliao/antoree/api"
	"github.com/yshengliao/antoree/auth"
	"github.com/yshengliao/antoree/config"
	"github.com/yshengliao/antoree/hooks"
	"github.com/yshengliao/antoree/middleware"
	"github.com/yshengliao/antoree/observability/metrics"
	"github.com/yshengliao/antoree/pkg/httpclient"
	"github.com/yshengliao/antoree/pkg/storage"
	"github.com/yshengliao/antoree/router"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

// runtime is the wired client stack of one CLI invocation
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Store
	client   *httpclient.Client
	session  *auth.Session
	registry routes.Registry
	handler  *router.RouteHandler
	api      *api.API
	hooks    *hooks.Routes

	promRegistry *prometheus.Registry
	buckets      *middleware.BucketStore
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logger.Level = opts.logLevel
	}
	if opts.metrics {
		cfg.Metrics.Enabled = true
	}
	// stdout carries command output
	cfg.Logger.OutputPaths = []string{"stderr"}
	return cfg, nil
}

func newRuntime(ctx context.Context, opts *globalOptions) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	var collector metrics.Collector = metrics.NoOpCollector{}
	if cfg.Metrics.Enabled {
		rt.promRegistry = prometheus.NewRegistry()
		pc, err := metrics.NewPrometheusCollector(rt.promRegistry, cfg.Metrics.Namespace)
		if err != nil {
			return nil, err
		}
		collector = pc
	}

	rt.store, err = storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, err
	}

	clientCfg := cfg.ClientConfig()
	// --base-url wins over NEXT_PUBLIC_API_URL too
	if opts.baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(opts.baseURL, "/")
	}
	rt.client = httpclient.New(clientCfg,
		httpclient.WithLogger(logger),
		httpclient.WithMetrics(collector),
	)

	rt.session = auth.NewSession(rt.client, rt.store, logger)
	if err := rt.session.Restore(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	rt.registry, err = routes.LoadWithDefaults(cfg.API.RoutesFile)
	if err != nil {
		rt.Close()
		return nil, err
	}

	// Rate-limit windows share the session store so they hold across runs
	deps := middleware.Deps{
		Tokens:  rt.client,
		Limiter: middleware.NewSlidingWindow(rt.store, middleware.WithWindowLogger(logger)),
		Logger:  logger,
	}
	if bc, ok := cfg.BucketStoreConfig(); ok {
		rt.buckets = middleware.NewBucketStore(bc)
		deps.Buckets = rt.buckets
	}

	rt.handler = router.New(rt.client,
		router.WithRegistry(rt.registry),
		router.WithMiddleware(middleware.NewSet(deps)),
		router.WithLogger(logger),
		router.WithMetrics(collector),
	)
	rt.api = api.New(rt.handler,
		api.WithTokenStore(rt.session),
		api.WithLogger(logger),
		api.WithReadCache(httpclient.CacheMode(cfg.API.ReadCache)),
	)
	rt.hooks = hooks.New(rt.handler, hooks.WithLogger(logger))
	return rt, nil
}

// writeMetrics prints the gathered metrics in the text exposition format
func (rt *runtime) writeMetrics(w io.Writer) error {
	if rt.promRegistry == nil {
		return nil
	}
	families, err := rt.promRegistry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the runtime's resources
func (rt *runtime) Close() {
	if rt.buckets != nil {
		rt.buckets.Stop()
	}
	if rt.client != nil {
		rt.client.Close()
	}
	if c, ok := rt.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			rt.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

// withRuntime runs fn against a fresh runtime and prints metrics when asked
func withRuntime(ctx context.Context, opts *globalOptions, out io.Writer, fn func(*runtime) error) error {
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := fn(rt); err != nil {
		return err
	}
	return rt.writeMetrics(out)
}
