package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/internal/repository"
)

// ChromedpFetcher renders pages in headless Chrome. One browser is shared;
// every Fetch opens and closes its own tab.
type ChromedpFetcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// NewChromedpFetcher starts a headless browser.
func NewChromedpFetcher(userAgent string, pageLoadTimeout time.Duration, logger *zap.Logger) (*ChromedpFetcher, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	sugar := logger.Sugar()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Warnf),
	)
	// Running an empty action list launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &ChromedpFetcher{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       pageLoadTimeout,
	}, nil
}

// Fetch navigates a new tab to url and returns the rendered document.
// The status code is taken from the last document response seen, which is
// the one after redirects.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url string) (*entity.Response, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var (
		mu     sync.Mutex
		status int64
	)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			mu.Lock()
			status = e.Response.Status
			mu.Unlock()
		}
	})

	var html, finalURL string
	start := time.Now()
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", repository.ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("browser navigate: %w", err)
	}

	mu.Lock()
	code := int(status)
	mu.Unlock()
	if code == 0 {
		return nil, errors.New("browser navigate: no document response observed")
	}

	return &entity.Response{
		StatusCode: code,
		Body:       []byte(html),
		FinalURL:   finalURL,
		Elapsed:    elapsed,
	}, nil
}

// Close shuts the browser down.
func (c *ChromedpFetcher) Close() {
	c.browserCancel()
	c.allocCancel()
}
