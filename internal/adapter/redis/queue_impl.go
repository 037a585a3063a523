package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lesingerouge/crawler/internal/entity"
)

// QueueSink pushes result records, JSON encoded, onto a Redis list.
type QueueSink struct {
	client *redis.Client
	key    string
}

// NewQueueSink creates a sink writing to the list named key.
func NewQueueSink(client *redis.Client, key string) *QueueSink {
	return &QueueSink{client: client, key: key}
}

func (q *QueueSink) Name() string {
	return "redis:" + q.key
}

// Emit adds the whole batch with a single LPUSH so a failure leaves the list
// unchanged.
func (q *QueueSink) Emit(ctx context.Context, records []entity.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.URL, err)
		}
		values = append(values, b)
	}
	if err := q.client.LPush(ctx, q.key, values...).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	return nil
}

// Size returns the current number of items in the list.
func (q *QueueSink) Size(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
