package repository

import (
	"context"

	"github.com/lesingerouge/crawler/internal/entity"
)

// ResultSink receives the full result batch of each crawl level.
type ResultSink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Emit stores one batch. Implementations must not damage previously
	// written batches when they fail part way.
	Emit(ctx context.Context, records []entity.ResultRecord) error
}
