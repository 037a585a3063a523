package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/lesingerouge/crawler/internal/repository"
	"github.com/lesingerouge/crawler/pkg/metrics"
	"github.com/lesingerouge/crawler/pkg/utils"
)

// Sanitizer turns raw link candidates into the next frontier: resolve, validate,
// then drop anything the visited store has already seen.
type Sanitizer struct {
	visited repository.VisitedRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewSanitizer creates a Sanitizer that filters against the given visited store.
func NewSanitizer(visited repository.VisitedRepository, logger *zap.Logger, m *metrics.Metrics) *Sanitizer {
	return &Sanitizer{visited: visited, logger: logger, metrics: m}
}

// Sanitize returns the sorted, deduplicated subset of candidates that is in
// scope and new for baseURL. Every kept URL is marked visited as a side effect.
// A URL whose visited mark cannot be written is dropped.
func (s *Sanitizer) Sanitize(ctx context.Context, candidates []string, baseURL string) []string {
	s.logger.Debug("received urls for sanitization", zap.Int("count", len(candidates)))

	seen := make(map[string]struct{}, len(candidates))
	kept := make([]string, 0)
	for _, c := range candidates {
		u := utils.Absolute(c, baseURL)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		if !IsValidURL(u, baseURL) {
			s.metrics.SanitizedTotal.WithLabelValues("invalid").Inc()
			continue
		}

		created, err := s.visited.MarkVisited(ctx, baseURL, utils.PathSuffix(u, baseURL))
		if err != nil {
			s.logger.Error("failed to mark url as visited, dropping it", zap.String("url", u), zap.Error(err))
			s.metrics.SanitizedTotal.WithLabelValues("store_error").Inc()
			continue
		}
		if !created {
			s.metrics.SanitizedTotal.WithLabelValues("visited").Inc()
			continue
		}
		s.metrics.SanitizedTotal.WithLabelValues("kept").Inc()
		kept = append(kept, u)
	}

	sort.Strings(kept)
	s.logger.Debug("after sanitization", zap.Int("count", len(kept)))
	return kept
}
