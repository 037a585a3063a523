package entity

import (
	"fmt"
	"time"
)

// Response is what a Fetcher returns for a single request, whatever its status.
type Response struct {
	StatusCode int
	Body       []byte
	FinalURL   string // after redirects
	Elapsed    time.Duration
}

// FetchResult is a page retrieved with HTTP 200.
type FetchResult struct {
	Content []byte
	URL     string
	Elapsed time.Duration
}

// FetchError records a URL that could not be retrieved: network failure,
// timeout or a non-200 status.
type FetchError struct {
	URL   string
	Cause error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e FetchError) Unwrap() error {
	return e.Cause
}

// ResultRecord is the serialized form of a FetchResult handed to result sinks.
// Content keeps the raw page bytes; JSON encodes it as base64.
type ResultRecord struct {
	RunID     string    `json:"run_id"`
	Seed      string    `json:"seed"`
	Depth     int       `json:"depth"`
	URL       string    `json:"url"`
	Content   []byte    `json:"content"`
	ElapsedMS int64     `json:"elapsed_ms"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewResultRecords converts one level's results into sink records.
func NewResultRecords(runID, seed string, depth int, results []FetchResult, fetchedAt time.Time) []ResultRecord {
	records := make([]ResultRecord, 0, len(results))
	for _, r := range results {
		records = append(records, ResultRecord{
			RunID:     runID,
			Seed:      seed,
			Depth:     depth,
			URL:       r.URL,
			Content:   r.Content,
			ElapsedMS: r.Elapsed.Milliseconds(),
			FetchedAt: fetchedAt,
		})
	}
	return records
}
