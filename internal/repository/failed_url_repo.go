package repository

import (
	"context"

	"github.com/lesingerouge/crawler/internal/entity"
)

// FailureRecorder receives URLs that could not be fetched so they can be
// retried by a later run. Nothing is requeued unless one is configured.
type FailureRecorder interface {
	RecordFailures(ctx context.Context, baseURL string, failures []entity.FetchError) error
}
