package entity

import "time"

// FailedURL mirrors the `failed_urls` PostgreSQL table schema.
type FailedURL struct {
	ID                   int64     `json:"id"`
	URL                  string    `json:"url"`
	BaseURL              string    `json:"base_url"`
	FailureReason        string    `json:"failure_reason"`
	LastAttemptTimestamp time.Time `json:"last_attempt_timestamp"`
	RetryCount           int       `json:"retry_count"`
}
