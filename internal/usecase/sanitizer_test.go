package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestSanitizeScenario(t *testing.T) {
	s := NewSanitizer(newMemVisited(), zaptest.NewLogger(t), newTestMetrics())

	got := s.Sanitize(context.Background(), []string{
		"/a",
		"http://example.com/b",
		"http://other.com/c",
		"/style.css",
	}, "http://example.com")

	assert.Equal(t, []string{"http://example.com/a", "http://example.com/b"}, got)
}

func TestSanitizeSkipsVisited(t *testing.T) {
	visited := newMemVisited()
	_, _ = visited.MarkVisited(context.Background(), "http://example.com", "/a")
	s := NewSanitizer(visited, zaptest.NewLogger(t), newTestMetrics())

	got := s.Sanitize(context.Background(), []string{
		"http://example.com/a",
		"http://example.com/d",
	}, "http://example.com")

	assert.Equal(t, []string{"http://example.com/d"}, got)
	assert.ElementsMatch(t, []string{"/a", "/d"}, visited.Keys("http://example.com"))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	s := NewSanitizer(newMemVisited(), zaptest.NewLogger(t), newTestMetrics())
	input := []string{"/x", "/y", "http://example.com/z"}

	first := s.Sanitize(context.Background(), input, "http://example.com")
	second := s.Sanitize(context.Background(), input, "http://example.com")

	assert.Len(t, first, 3)
	assert.Empty(t, second)
}

func TestSanitizeDeduplicatesWithinBatch(t *testing.T) {
	s := NewSanitizer(newMemVisited(), zaptest.NewLogger(t), newTestMetrics())

	got := s.Sanitize(context.Background(), []string{
		"/a",
		"http://example.com/a",
		"/a",
	}, "http://example.com")

	assert.Equal(t, []string{"http://example.com/a"}, got)
}

func TestSanitizeLeavesOtherRelativeFormsUnresolved(t *testing.T) {
	visited := newMemVisited()
	s := NewSanitizer(visited, zaptest.NewLogger(t), newTestMetrics())

	got := s.Sanitize(context.Background(), []string{
		"../up",
		"//cdn.example.com/x",
		"relative/path",
	}, "http://example.com")

	assert.Empty(t, got)
	assert.Empty(t, visited.Keys("http://example.com"), "rejected urls are never marked")
}

func TestSanitizeDropsOnStoreError(t *testing.T) {
	visited := newMemVisited()
	visited.err = errors.New("connection refused")
	s := NewSanitizer(visited, zaptest.NewLogger(t), newTestMetrics())

	got := s.Sanitize(context.Background(), []string{"/a"}, "http://example.com")
	assert.Empty(t, got)
}
