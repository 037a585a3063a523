package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lesingerouge/crawler/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS visited (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	first_seen INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// VisitedRepoImpl keeps the visited-set in a local SQLite file, for
// deployments without Redis.
type VisitedRepoImpl struct {
	db *sql.DB
}

// OpenVisitedRepo opens or creates the database at path.
func OpenVisitedRepo(ctx context.Context, path string) (*VisitedRepoImpl, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &VisitedRepoImpl{db: db}, nil
}

// MarkVisited inserts the record unless it exists; the primary key makes the
// check and the insert one statement.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, namespace, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO visited (namespace, key, first_seen) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, key) DO NOTHING`,
		namespace, key, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("%w: insert: %v", repository.ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected: %v", repository.ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

func (r *VisitedRepoImpl) IsVisited(ctx context.Context, namespace, key string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM visited WHERE namespace = ? AND key = ?`, namespace, key).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: select: %v", repository.ErrStoreUnavailable, err)
	}
	return true, nil
}

func (r *VisitedRepoImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the database handle.
func (r *VisitedRepoImpl) Close() error {
	return r.db.Close()
}
