package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/pkg/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

type fakePage struct {
	status int
	body   string
	err    error
}

// fakeFetcher serves pages from a map and records every call. Unknown URLs
// answer 404.
type fakeFetcher struct {
	pages map[string]fakePage
	delay time.Duration
	// onFetch runs before each request is served.
	onFetch func(url string)

	mu       sync.Mutex
	calls    []string
	events   []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func newFakeFetcher(pages map[string]fakePage) *fakeFetcher {
	return &fakeFetcher{pages: pages}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*entity.Response, error) {
	if f.onFetch != nil {
		f.onFetch(url)
	}
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.events = append(f.events, "start "+url)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.events = append(f.events, "end "+url)
	f.mu.Unlock()
	f.inFlight.Add(-1)

	page, ok := f.pages[url]
	if !ok {
		return &entity.Response{StatusCode: http.StatusNotFound, FinalURL: url}, nil
	}
	if page.err != nil {
		return nil, page.err
	}
	status := page.status
	if status == 0 {
		status = http.StatusOK
	}
	return &entity.Response{
		StatusCode: status,
		Body:       []byte(page.body),
		FinalURL:   url,
		Elapsed:    time.Millisecond,
	}, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFetcher) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// memVisited is an in-memory visited store.
type memVisited struct {
	mu   sync.Mutex
	data map[string]map[string]struct{}
	err  error
}

func newMemVisited() *memVisited {
	return &memVisited{data: make(map[string]map[string]struct{})}
}

func (m *memVisited) MarkVisited(_ context.Context, namespace, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]struct{})
		m.data[namespace] = ns
	}
	if _, seen := ns[key]; seen {
		return false, nil
	}
	ns[key] = struct{}{}
	return true, nil
}

func (m *memVisited) IsVisited(_ context.Context, namespace, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[namespace][key]
	return ok, m.err
}

func (m *memVisited) Ping(context.Context) error { return m.err }

func (m *memVisited) Keys(namespace string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data[namespace] {
		keys = append(keys, k)
	}
	return keys
}

var errBrokenPage = errors.New("broken page")

// fakeParser reads one href per line and fails on pages starting with BROKEN.
type fakeParser struct{}

func (fakeParser) ParseLinks(body []byte) ([]string, error) {
	s := string(body)
	if strings.HasPrefix(s, "BROKEN") {
		return nil, errBrokenPage
	}
	return strings.Fields(s), nil
}

type recordingSink struct {
	name    string
	err     error
	mu      sync.Mutex
	batches [][]entity.ResultRecord
	ctxErrs []error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Emit(ctx context.Context, records []entity.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, records)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

type recordingRecorder struct {
	mu       sync.Mutex
	failures []entity.FetchError
	ctxErrs  []error
}

// RecordFailures fails like a real store would when ctx is already done.
func (r *recordingRecorder) RecordFailures(ctx context.Context, _ string, failures []entity.FetchError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	if err := ctx.Err(); err != nil {
		return err
	}
	r.failures = append(r.failures, failures...)
	return nil
}
