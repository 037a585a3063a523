package httpfetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/internal/repository"
)

// Options controls HTTP fetching behaviour.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	// MaxConnsPerHost bounds pooled connections; set it to the chunk size.
	MaxConnsPerHost int
	// Rotator, when set, supplies per-request user agents and proxies.
	Rotator   *Rotator
	Transport http.RoundTripper
}

// Fetcher implements repository.Fetcher with net/http.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	rotator      *Rotator
	maxBodyBytes int64
}

// NewFetcher constructs an HTTP fetcher using the provided options.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 * 1024 * 1024
	}

	proxy := http.ProxyFromEnvironment
	if opts.Rotator != nil && opts.Rotator.HasProxies() {
		proxy = opts.Rotator.Proxy
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:                 proxy,
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   opts.MaxConnsPerHost,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	return &Fetcher{
		client:       &http.Client{Timeout: opts.Timeout, Transport: transport},
		userAgent:    opts.UserAgent,
		rotator:      opts.Rotator,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Fetch downloads url. Non-200 statuses are returned as a Response, not an
// error; the caller decides what counts as success.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*entity.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if ua := f.pickUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("http fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)
		}
		return nil, err
	}

	return &entity.Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
		Elapsed:    time.Since(start),
	}, nil
}

func (f *Fetcher) pickUserAgent() string {
	if f.rotator != nil {
		if ua := f.rotator.UserAgent(); ua != "" {
			return ua
		}
	}
	return f.userAgent
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
