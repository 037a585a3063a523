package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lesingerouge/crawler/internal/entity"
)

// RetryQueue returns URLs that failed to fetch to a Redis list for a later
// run to pick up.
type RetryQueue struct {
	client *redis.Client
	key    string
}

// NewRetryQueue creates a recorder pushing failed URLs to the list named key.
func NewRetryQueue(client *redis.Client, key string) *RetryQueue {
	return &RetryQueue{client: client, key: key}
}

// RecordFailures pushes every failed URL onto the list.
func (q *RetryQueue) RecordFailures(ctx context.Context, _ string, failures []entity.FetchError) error {
	if len(failures) == 0 {
		return nil
	}
	urls := make([]interface{}, 0, len(failures))
	for _, f := range failures {
		urls = append(urls, f.URL)
	}
	if err := q.client.LPush(ctx, q.key, urls...).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	return nil
}

// Pop removes and returns a URL from the right side of the list, making the
// list a FIFO. It returns redis.Nil when the list is empty.
func (q *RetryQueue) Pop(ctx context.Context) (string, error) {
	return q.client.RPop(ctx, q.key).Result()
}
