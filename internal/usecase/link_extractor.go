package usecase

import (
	"sort"

	"go.uber.org/zap"

	"github.com/lesingerouge/crawler/internal/repository"
	"github.com/lesingerouge/crawler/pkg/metrics"
)

// LinkExtractor gathers href values across a batch of pages.
type LinkExtractor struct {
	parser  repository.LinkParser
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewLinkExtractor creates a LinkExtractor that parses pages with parser.
func NewLinkExtractor(parser repository.LinkParser, logger *zap.Logger, m *metrics.Metrics) *LinkExtractor {
	return &LinkExtractor{parser: parser, logger: logger, metrics: m}
}

// Extract parses every page and returns the sorted set of raw href values.
// A page that fails to parse is logged and contributes nothing; the rest are
// still processed.
func (e *LinkExtractor) Extract(pages [][]byte) []string {
	set := make(map[string]struct{})
	failed := 0
	for i, page := range pages {
		links, err := e.parser.ParseLinks(page)
		if err != nil {
			failed++
			e.metrics.ParseErrorsTotal.Inc()
			e.logger.Warn("failed to parse page, skipping", zap.Int("page", i), zap.Error(err))
			continue
		}
		for _, l := range links {
			set[l] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)

	e.metrics.LinksExtractedTotal.Add(float64(len(out)))
	e.logger.Debug("extracted links",
		zap.Int("links", len(out)),
		zap.Int("pages", len(pages)),
		zap.Int("parse_errors", failed),
	)
	return out
}
