package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lesingerouge/crawler/internal/repository"
)

// VisitedRepoImpl stores the visited-set in Redis: one hash per base URL,
// one field per path suffix, value "1".
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

// MarkVisited sets the field only if absent. HSETNX is atomic, so two
// concurrent sanitization passes cannot both see the URL as new.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, namespace, key string) (bool, error) {
	created, err := r.client.HSetNX(ctx, namespace, key, 1).Result()
	if err != nil {
		return false, fmt.Errorf("%w: hsetnx %s: %v", repository.ErrStoreUnavailable, namespace, err)
	}
	return created, nil
}

// IsVisited checks for the field without writing it.
func (r *VisitedRepoImpl) IsVisited(ctx context.Context, namespace, key string) (bool, error) {
	ok, err := r.client.HExists(ctx, namespace, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: hexists %s: %v", repository.ErrStoreUnavailable, namespace, err)
	}
	return ok, nil
}

func (r *VisitedRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
