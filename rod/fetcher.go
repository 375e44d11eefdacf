// Package rod fetches JavaScript-rendered pages with a headless browser.
package rod

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/webclip"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements webclip.Fetcher at compile time.
var _ webclip.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager     *BrowserManager
	timeout     time.Duration
	managerOpts []ManagerOption
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each page render. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithBrowser passes options to the BrowserManager the Fetcher launches.
func WithBrowser(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher launches a headless browser. Close must be called when the
// Fetcher is no longer needed.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch renders the page and returns its HTML after the load event. The
// browser does not expose the document's status code, so a page that loads
// is reported as 200.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*webclip.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Page()
	if err != nil {
		return nil, err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, contextErr(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, contextErr(ctx, err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, contextErr(ctx, err)
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &webclip.Response{URL: finalURL, HTML: html, Status: http.StatusOK}, nil
}

// Close releases browser resources. It is safe to call more than once.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// contextErr prefers the context's error so callers can match
// context.DeadlineExceeded and context.Canceled.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
