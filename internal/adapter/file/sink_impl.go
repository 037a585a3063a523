package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/lesingerouge/crawler/internal/entity"
)

// Sink appends result records to a file, one JSON object per line.
type Sink struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// OpenSink opens path for appending, creating it if needed. Existing content
// is never truncated.
func OpenSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return &Sink{path: path, f: f}, nil
}

func (s *Sink) Name() string {
	return "file:" + s.path
}

// Emit encodes the whole batch first and appends it with a single write, so
// an encoding failure leaves the file untouched.
func (s *Sink) Emit(_ context.Context, records []entity.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %s: %w", rec.URL, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return s.f.Sync()
}

// Close closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
