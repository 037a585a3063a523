package repository

import (
	"context"

	"github.com/lesingerouge/crawler/internal/entity"
)

// Fetcher defines the contract for retrieving a single page.
type Fetcher interface {
	// Fetch issues one request. Any HTTP status is returned as a Response;
	// transport failures and timeouts are returned as errors.
	Fetch(ctx context.Context, url string) (*entity.Response, error)
}
