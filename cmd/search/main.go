package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mihirdhamankar/searchlite/internal/index"
	"github.com/mihirdhamankar/searchlite/internal/search"
	"github.com/mihirdhamankar/searchlite/internal/search/cache"
	"github.com/mihirdhamankar/searchlite/internal/service"
	"github.com/mihirdhamankar/searchlite/internal/store"
	"github.com/mihirdhamankar/searchlite/pkg/config"
	"github.com/mihirdhamankar/searchlite/pkg/health"
	"github.com/mihirdhamankar/searchlite/pkg/logger"
	"github.com/mihirdhamankar/searchlite/pkg/metrics"
	"github.com/mihirdhamankar/searchlite/pkg/middleware"
	pkgredis "github.com/mihirdhamankar/searchlite/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	opts, err := index.OptionsFromConfig(cfg.Index.Mode, cfg.Index.Compression, cfg.Index.Optimization)
	if err != nil {
		slog.Error("invalid index configuration", "error", err)
		os.Exit(1)
	}

	s, err := store.Open(cfg.Store, cfg.Postgres)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer s.Close()

	idx, err := index.Load(s, opts)
	if err != nil {
		slog.Error("failed to load index", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	slog.Info("index loaded",
		"mode", opts.Mode.String(),
		"compression", opts.Compression.String(),
		"optimization", opts.Optimization.String(),
		"documents", idx.N(),
		"terms", idx.TermCount(),
	)

	m := metrics.New()
	m.IndexDocuments.Set(float64(idx.N()))
	m.IndexTerms.Set(float64(idx.TermCount()))

	ranked := search.RankedOptions{
		Thresholding:        cfg.Search.Thresholding,
		ThresholdFraction:   cfg.Search.ThresholdFraction,
		EarlyStop:           cfg.Search.EarlyStop,
		EarlyStopMultiplier: cfg.Search.EarlyStopMultiplier,
	}
	searcher := search.New(idx, ranked, m)

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if idx.N() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents", idx.N()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "empty index"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	defaultStrategy, err := search.ParseStrategy(cfg.Search.Strategy)
	if err != nil {
		slog.Error("invalid search strategy", "strategy", cfg.Search.Strategy, "error", err)
		os.Exit(1)
	}
	h := service.NewHandler(searcher, queryCache, cfg.Search.DefaultTopK, cfg.Search.MaxTopK, defaultStrategy)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Search.Timeout)(chain)
	chain = middleware.RequestID(chain)

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}
