package httpfetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lesingerouge/crawler/internal/repository"
)

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.UserAgent())
		_, _ = w.Write([]byte("<html>page</html>"))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("zipped"))
		_ = gz.Close()
	})
	mux.HandleFunc("/br", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		_, _ = bw.Write([]byte("brotli body"))
		_ = bw.Close()
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(buf.Bytes())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(Options{UserAgent: "test-agent", Timeout: 5 * time.Second})
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		resp, err := f.Fetch(ctx, srv.URL+"/page")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<html>page</html>", string(resp.Body))
		assert.Equal(t, srv.URL+"/page", resp.FinalURL)
		assert.True(t, resp.Elapsed > 0)
	})

	t.Run("redirect records final url", func(t *testing.T) {
		resp, err := f.Fetch(ctx, srv.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, srv.URL+"/page", resp.FinalURL)
	})

	t.Run("non-200 is a response", func(t *testing.T) {
		resp, err := f.Fetch(ctx, srv.URL+"/broken")
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("gzip", func(t *testing.T) {
		resp, err := f.Fetch(ctx, srv.URL+"/gzip")
		require.NoError(t, err)
		assert.Equal(t, "zipped", string(resp.Body))
	})

	t.Run("brotli", func(t *testing.T) {
		resp, err := f.Fetch(ctx, srv.URL+"/br")
		require.NoError(t, err)
		assert.Equal(t, "brotli body", string(resp.Body))
	})

	t.Run("transport error", func(t *testing.T) {
		_, err := f.Fetch(ctx, "http://127.0.0.1:1/unreachable")
		assert.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := f.Fetch(ctx, "://nope")
		assert.Error(t, err)
	})
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcher(Options{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrFetchTimeout), "got %v", err)
}

func TestFetchBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 1024))
	}))
	defer srv.Close()

	f := NewFetcher(Options{MaxBodyBytes: 10})
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 10)
}
