package repository

import "context"

// VisitedRepository is the durable visited-set. Records are keyed by
// (namespace, key) where namespace is the crawl's base URL and key is the
// path suffix relative to it. Records are never deleted.
type VisitedRepository interface {
	// MarkVisited atomically inserts the record if absent. It returns true
	// when this call created the record, false if it already existed.
	MarkVisited(ctx context.Context, namespace, key string) (bool, error)
	// IsVisited reports whether the record exists.
	IsVisited(ctx context.Context, namespace, key string) (bool, error)
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
