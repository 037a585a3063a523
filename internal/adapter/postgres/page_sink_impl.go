package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lesingerouge/crawler/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS crawled_pages (
	url         TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	seed        TEXT NOT NULL,
	depth       INTEGER NOT NULL,
	content     BYTEA NOT NULL,
	elapsed_ms  BIGINT NOT NULL,
	fetched_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS failed_urls (
	id                     BIGSERIAL PRIMARY KEY,
	url                    TEXT UNIQUE NOT NULL,
	base_url               TEXT NOT NULL,
	failure_reason         TEXT NOT NULL,
	last_attempt_timestamp TIMESTAMPTZ NOT NULL,
	retry_count            INTEGER NOT NULL DEFAULT 1
);`

// EnsureSchema creates the tables used by PageSinkImpl and FailedURLRepoImpl.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// PageSinkImpl stores result records in the crawled_pages table.
type PageSinkImpl struct {
	db *pgxpool.Pool
}

// NewPageSink creates a new instance of PageSinkImpl.
func NewPageSink(db *pgxpool.Pool) *PageSinkImpl {
	return &PageSinkImpl{db: db}
}

func (s *PageSinkImpl) Name() string {
	return "postgres:crawled_pages"
}

// Emit upserts the batch inside one transaction; on failure nothing from the
// batch is committed.
func (s *PageSinkImpl) Emit(ctx context.Context, records []entity.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO crawled_pages (url, run_id, seed, depth, content, elapsed_ms, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (url) DO UPDATE SET
				run_id = EXCLUDED.run_id,
				seed = EXCLUDED.seed,
				depth = EXCLUDED.depth,
				content = EXCLUDED.content,
				elapsed_ms = EXCLUDED.elapsed_ms,
				fetched_at = EXCLUDED.fetched_at`,
			rec.URL, rec.RunID, rec.Seed, rec.Depth, rec.Content, rec.ElapsedMS, rec.FetchedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert crawled pages: %w", err)
	}
	return tx.Commit(ctx)
}
