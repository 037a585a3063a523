package usecase

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/internal/repository"
	"github.com/lesingerouge/crawler/pkg/metrics"
)

// BatchFetcher fetches URL sets in chunks of at most maxConcurrency requests.
// Requests inside a chunk run concurrently; the next chunk starts only once
// every request of the previous one has settled. Nothing is retried.
type BatchFetcher struct {
	fetcher        repository.Fetcher
	maxConcurrency int
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// NewBatchFetcher creates a BatchFetcher running at most maxConcurrency requests at once.
func NewBatchFetcher(fetcher repository.Fetcher, maxConcurrency int, logger *zap.Logger, m *metrics.Metrics) *BatchFetcher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &BatchFetcher{
		fetcher:        fetcher,
		maxConcurrency: maxConcurrency,
		logger:         logger,
		metrics:        m,
	}
}

// Chunk splits urls into consecutive slices of at most size elements.
func Chunk(urls []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	chunks := make([][]string, 0, (len(urls)+size-1)/size)
	for start := 0; start < len(urls); start += size {
		end := min(start+size, len(urls))
		chunks = append(chunks, urls[start:end])
	}
	return chunks
}

type outcome struct {
	result *entity.FetchResult
	err    *entity.FetchError
}

// Fetch retrieves every URL. Only HTTP 200 responses become results; every
// other outcome is returned as a FetchError. Both slices follow input order.
func (b *BatchFetcher) Fetch(ctx context.Context, urls []string) ([]entity.FetchResult, []entity.FetchError) {
	var (
		results  []entity.FetchResult
		failures []entity.FetchError
	)

	for _, chunk := range Chunk(urls, b.maxConcurrency) {
		outcomes := make([]outcome, len(chunk))

		var g errgroup.Group
		for i, u := range chunk {
			g.Go(func() error {
				outcomes[i] = b.fetchOne(ctx, u)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors; failures live in outcomes

		for _, o := range outcomes {
			if o.err != nil {
				failures = append(failures, *o.err)
				continue
			}
			results = append(results, *o.result)
		}
	}

	b.logger.Debug("scraped pages",
		zap.Int("results", len(results)),
		zap.Int("errors", len(failures)),
	)
	return results, failures
}

func (b *BatchFetcher) fetchOne(ctx context.Context, url string) outcome {
	resp, err := b.fetcher.Fetch(ctx, url)
	if err == nil && resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%w: %d", repository.ErrUnexpectedStatus, resp.StatusCode)
	}
	if err != nil {
		b.metrics.FetchesTotal.WithLabelValues("failure").Inc()
		b.logger.Error("problem scraping url", zap.String("url", url), zap.Error(err))
		return outcome{err: &entity.FetchError{URL: url, Cause: err}}
	}

	b.metrics.FetchesTotal.WithLabelValues("success").Inc()
	b.metrics.FetchDuration.Observe(resp.Elapsed.Seconds())
	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = url
	}
	return outcome{result: &entity.FetchResult{
		Content: resp.Body,
		URL:     finalURL,
		Elapsed: resp.Elapsed,
	}}
}
