package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/internal/repository"
	"github.com/lesingerouge/crawler/pkg/metrics"
)

var (
	// ErrNoSeeds is returned when a crawl is started without any seed URL.
	ErrNoSeeds = errors.New("no seed urls given")
	// ErrSeedFetchFailed marks a seed whose first fetch produced no page.
	ErrSeedFetchFailed = errors.New("seed fetch produced no results")
)

// Crawler defines the interface for the depth-bounded crawl.
type Crawler interface {
	Run(ctx context.Context, seed entity.Seed) ([]entity.SeedReport, error)
}

// CrawlerDeps groups the collaborators of the crawl loop.
type CrawlerDeps struct {
	Fetcher   *BatchFetcher
	Extractor *LinkExtractor
	Sanitizer *Sanitizer
	Sinks     []repository.ResultSink
	// Recorders receive failed URLs; with none configured nothing is requeued.
	Recorders []repository.FailureRecorder
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

type crawlerUseCase struct {
	fetcher   *BatchFetcher
	extractor *LinkExtractor
	sanitizer *Sanitizer
	sinks     []repository.ResultSink
	recorders []repository.FailureRecorder
	depth     int
	logger    *zap.Logger
	metrics   *metrics.Metrics

	newRunID func() string
	now      func() time.Time
}

// NewCrawlerUseCase creates the crawl orchestrator. depth is the number of
// levels fetched after the seed.
func NewCrawlerUseCase(deps CrawlerDeps, depth int) Crawler {
	return &crawlerUseCase{
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		sanitizer: deps.Sanitizer,
		sinks:     deps.Sinks,
		recorders: deps.Recorders,
		depth:     depth,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		newRunID:  uuid.NewString,
		now:       time.Now,
	}
}

// Run crawls every seed URL in turn. A dead seed is logged and skipped; it
// never stops the others. The error is non-nil only for an empty seed or a
// cancelled context.
func (uc *crawlerUseCase) Run(ctx context.Context, seed entity.Seed) ([]entity.SeedReport, error) {
	urls := seed.URLs()
	if len(urls) == 0 {
		return nil, ErrNoSeeds
	}

	runID := uc.newRunID()
	logger := uc.logger.With(zap.String("run_id", runID))
	logger.Info("crawl started", zap.Int("seeds", len(urls)), zap.Int("depth", uc.depth))

	reports := make([]entity.SeedReport, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := uc.crawlSeed(ctx, logger.With(zap.String("seed", u)), runID, u)
		if err != nil {
			logger.Warn("skipping seed", zap.String("seed", u), zap.Error(err))
		}
		reports = append(reports, report)
	}

	logger.Info("crawl finished", zap.Int("seeds", len(reports)))
	return reports, ctx.Err()
}

// crawlSeed runs the BFS for one seed. The seed URL is also the base URL:
// the scope prefix and the visited-store namespace.
func (uc *crawlerUseCase) crawlSeed(ctx context.Context, logger *zap.Logger, runID, baseURL string) (entity.SeedReport, error) {
	report := entity.SeedReport{Seed: baseURL}
	// Pages already fetched and URLs already marked visited must still reach
	// sinks and recorders after an interrupt.
	persistCtx := context.WithoutCancel(ctx)

	results, failures := uc.fetcher.Fetch(ctx, []string{baseURL})
	report.PagesFetched += len(results)
	report.FetchErrors += len(failures)
	uc.recordFailures(persistCtx, logger, baseURL, failures)
	if len(results) == 0 {
		report.Aborted = true
		return report, fmt.Errorf("%w: %s", ErrSeedFetchFailed, baseURL)
	}

	state := entity.CrawlState{
		BaseURL:         baseURL,
		CurrentFrontier: uc.nextFrontier(ctx, results, baseURL),
		RemainingDepth:  uc.depth,
	}

	for !state.Done() {
		if ctx.Err() != nil {
			logger.Info("crawl interrupted", zap.Int("level", state.Level+1))
			break
		}
		level := state.Level + 1
		uc.metrics.FrontierSize.Set(float64(len(state.CurrentFrontier)))

		results, failures := uc.fetcher.Fetch(ctx, state.CurrentFrontier)
		report.PagesFetched += len(results)
		report.FetchErrors += len(failures)

		uc.emit(persistCtx, logger, entity.NewResultRecords(runID, baseURL, level, results, uc.now()))
		uc.recordFailures(persistCtx, logger, baseURL, failures)

		next := uc.nextFrontier(ctx, results, baseURL)
		logger.Info("level complete",
			zap.Int("level", level),
			zap.Int("frontier", len(state.CurrentFrontier)),
			zap.Int("results", len(results)),
			zap.Int("errors", len(failures)),
			zap.Int("next_frontier", len(next)),
		)
		uc.metrics.LevelsTotal.Inc()
		report.Levels = level
		state.Advance(next)
	}

	uc.metrics.FrontierSize.Set(0)
	return report, nil
}

// nextFrontier extracts links from the fetched pages only and sanitizes them.
func (uc *crawlerUseCase) nextFrontier(ctx context.Context, results []entity.FetchResult, baseURL string) []string {
	pages := make([][]byte, 0, len(results))
	for _, r := range results {
		pages = append(pages, r.Content)
	}
	return uc.sanitizer.Sanitize(ctx, uc.extractor.Extract(pages), baseURL)
}

// emit hands the level's batch to every sink. Sink failures are logged and
// do not stop the crawl.
func (uc *crawlerUseCase) emit(ctx context.Context, logger *zap.Logger, records []entity.ResultRecord) {
	if len(records) == 0 {
		return
	}
	for _, sink := range uc.sinks {
		if err := sink.Emit(ctx, records); err != nil {
			uc.metrics.SinkWritesTotal.WithLabelValues(sink.Name(), "error").Inc()
			logger.Error("failed to write results", zap.String("sink", sink.Name()), zap.Error(err))
			continue
		}
		uc.metrics.SinkWritesTotal.WithLabelValues(sink.Name(), "ok").Inc()
	}
}

func (uc *crawlerUseCase) recordFailures(ctx context.Context, logger *zap.Logger, baseURL string, failures []entity.FetchError) {
	if len(failures) == 0 {
		return
	}
	for _, r := range uc.recorders {
		if err := r.RecordFailures(ctx, baseURL, failures); err != nil {
			logger.Error("failed to record failed urls", zap.Int("count", len(failures)), zap.Error(err))
		}
	}
}
