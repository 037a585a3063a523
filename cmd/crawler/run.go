package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lesingerouge/crawler/internal/adapter/chromedp_fetcher"
	"github.com/lesingerouge/crawler/internal/adapter/file"
	"github.com/lesingerouge/crawler/internal/adapter/goquery_parser"
	"github.com/lesingerouge/crawler/internal/adapter/httpfetch"
	"github.com/lesingerouge/crawler/internal/adapter/postgres"
	redis_adapter "github.com/lesingerouge/crawler/internal/adapter/redis"
	"github.com/lesingerouge/crawler/internal/adapter/sqlite"
	"github.com/lesingerouge/crawler/internal/delivery/http/handler"
	"github.com/lesingerouge/crawler/internal/delivery/http/router"
	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/internal/repository"
	"github.com/lesingerouge/crawler/internal/usecase"
	"github.com/lesingerouge/crawler/pkg/config"
	"github.com/lesingerouge/crawler/pkg/logger"
	"github.com/lesingerouge/crawler/pkg/metrics"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// run wires the crawl from cfg and blocks until every seed is done or ctx is
// cancelled. Any store or sink that cannot be opened is fatal.
func run(ctx context.Context, cfg *config.Config, seed entity.Seed, opts options) error {
	log, err := logger.New(opts.out, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New(opts.registerer)

	// --- Redis ---
	var rdb *redis.Client
	if cfg.VisitedBackend == config.BackendRedis || cfg.OutputQueue != "" || cfg.RetryQueue != "" {
		rdb, err = connectRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("redis connection established", zap.String("addr", cfg.RedisAddr()))
	}

	// --- Visited store ---
	var visited repository.VisitedRepository
	switch cfg.VisitedBackend {
	case config.BackendSQLite:
		store, err := sqlite.OpenVisitedRepo(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite visited store: %w", err)
		}
		defer store.Close()
		visited = store
		log.Info("sqlite visited store opened", zap.String("path", cfg.SQLitePath))
	default:
		visited = redis_adapter.NewVisitedRepo(rdb)
	}

	// --- Fetcher ---
	fetcher, closeFetcher, err := newFetcher(cfg, log)
	if err != nil {
		return err
	}
	defer closeFetcher()

	// --- Sinks and failure recorders ---
	var (
		sinks     []repository.ResultSink
		recorders []repository.FailureRecorder
	)
	if cfg.OutputQueue != "" {
		sinks = append(sinks, redis_adapter.NewQueueSink(rdb, cfg.OutputQueue))
	}
	if cfg.OutputFile != "" {
		fileSink, err := file.OpenSink(cfg.OutputFile)
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sinks = append(sinks, fileSink)
	}
	if cfg.RetryQueue != "" {
		recorders = append(recorders, redis_adapter.NewRetryQueue(rdb, cfg.RetryQueue))
	}
	if cfg.PostgresURL != "" {
		pool, err := connectPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		sinks = append(sinks, postgres.NewPageSink(pool))
		recorders = append(recorders, postgres.NewFailedURLRepo(pool))
		log.Info("postgres connection pool established")
	}
	if len(sinks) == 0 {
		log.Warn("no result sink configured, fetched pages will be discarded")
	}

	// --- Metrics and health listener ---
	if cfg.MetricsAddr != "" {
		server := &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      router.New(handler.NewHandler(visited, log), m, opts.gatherer, log),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener failed", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics listener shutdown", zap.Error(err))
			}
		}()
		log.Info("metrics listener started", zap.String("addr", cfg.MetricsAddr))
	}

	crawler := usecase.NewCrawlerUseCase(usecase.CrawlerDeps{
		Fetcher:   usecase.NewBatchFetcher(fetcher, cfg.MaxConcurrency, log, m),
		Extractor: usecase.NewLinkExtractor(goquery_parser.NewLinkParser(), log, m),
		Sanitizer: usecase.NewSanitizer(visited, log, m),
		Sinks:     sinks,
		Recorders: recorders,
		Logger:    log,
		Metrics:   m,
	}, cfg.CrawlDepth)

	reports, err := crawler.Run(ctx, seed)
	for _, r := range reports {
		log.Info("seed summary",
			zap.String("seed", r.Seed),
			zap.Int("levels", r.Levels),
			zap.Int("pages", r.PagesFetched),
			zap.Int("errors", r.FetchErrors),
			zap.Bool("aborted", r.Aborted),
		)
	}
	if errors.Is(err, context.Canceled) {
		log.Info("crawl interrupted by signal")
		return nil
	}
	return err
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr(), err)
	}
	return rdb, nil
}

func connectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newFetcher returns the configured page fetcher and its cleanup.
func newFetcher(cfg *config.Config, log *zap.Logger) (repository.Fetcher, func(), error) {
	if cfg.FetchMode == config.FetchModeBrowser {
		f, err := chromedp_fetcher.NewChromedpFetcher(cfg.UserAgent, cfg.RequestTimeout, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("headless browser started")
		return f, f.Close, nil
	}

	rotator, err := httpfetch.NewRotator(cfg.ProxyURLs, cfg.UserAgents)
	if err != nil {
		return nil, nil, fmt.Errorf("configure http fetcher: %w", err)
	}
	f := httpfetch.NewFetcher(httpfetch.Options{
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.RequestTimeout,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		MaxConnsPerHost: cfg.MaxConcurrency,
		Rotator:         rotator,
	})
	return f, func() {}, nil
}
