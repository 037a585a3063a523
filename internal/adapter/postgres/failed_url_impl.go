package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lesingerouge/crawler/internal/entity"
)

// FailedURLRepoImpl keeps a ledger of URLs that could not be fetched.
type FailedURLRepoImpl struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewFailedURLRepo creates a new instance of FailedURLRepoImpl.
func NewFailedURLRepo(db *pgxpool.Pool) *FailedURLRepoImpl {
	return &FailedURLRepoImpl{db: db, now: time.Now}
}

// RecordFailures creates or updates one row per failed URL.
// It increments the retry_count on conflict.
func (r *FailedURLRepoImpl) RecordFailures(ctx context.Context, baseURL string, failures []entity.FetchError) error {
	if len(failures) == 0 {
		return nil
	}
	now := r.now()
	batch := &pgx.Batch{}
	for _, f := range failures {
		batch.Queue(`
			INSERT INTO failed_urls (url, base_url, failure_reason, last_attempt_timestamp, retry_count)
			VALUES ($1, $2, $3, $4, 1)
			ON CONFLICT (url) DO UPDATE SET
				failure_reason = EXCLUDED.failure_reason,
				last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
				retry_count = failed_urls.retry_count + 1`,
			f.URL, baseURL, causeText(f), now)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record failed urls: %w", err)
	}
	return nil
}

// FindByBaseURL lists the ledger entries for one crawl scope, most recent first.
func (r *FailedURLRepoImpl) FindByBaseURL(ctx context.Context, baseURL string, limit int) ([]*entity.FailedURL, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, url, base_url, failure_reason, last_attempt_timestamp, retry_count
		FROM failed_urls
		WHERE base_url = $1
		ORDER BY last_attempt_timestamp DESC
		LIMIT $2`, baseURL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.FailedURL
	for rows.Next() {
		var fu entity.FailedURL
		if err := rows.Scan(
			&fu.ID,
			&fu.URL,
			&fu.BaseURL,
			&fu.FailureReason,
			&fu.LastAttemptTimestamp,
			&fu.RetryCount,
		); err != nil {
			return nil, err
		}
		out = append(out, &fu)
	}
	return out, rows.Err()
}

func causeText(f entity.FetchError) string {
	if f.Cause == nil {
		return "unknown"
	}
	return f.Cause.Error()
}
