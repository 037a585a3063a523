package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestExtractMergesPages(t *testing.T) {
	e := NewLinkExtractor(fakeParser{}, zaptest.NewLogger(t), newTestMetrics())

	got := e.Extract([][]byte{
		[]byte("/a /b"),
		[]byte("/b http://other.com/c"),
	})

	assert.Equal(t, []string{"/a", "/b", "http://other.com/c"}, got)
}

func TestExtractSkipsBrokenPages(t *testing.T) {
	e := NewLinkExtractor(fakeParser{}, zaptest.NewLogger(t), newTestMetrics())

	got := e.Extract([][]byte{
		[]byte("/a"),
		[]byte("BROKEN /never"),
		[]byte("/c"),
	})

	assert.Equal(t, []string{"/a", "/c"}, got)
}

func TestExtractNoPages(t *testing.T) {
	e := NewLinkExtractor(fakeParser{}, zaptest.NewLogger(t), newTestMetrics())
	assert.Empty(t, e.Extract(nil))
}
