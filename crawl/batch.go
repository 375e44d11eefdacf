package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/bloom"
	"golang.org/x/sync/errgroup"
)

// Deduplication filter sizing for a batch.
const (
	batchFalsePositiveRate = 0.001
	minBatchExpectedURLs   = 1024
)

// Batch converts a list of URLs concurrently and writes each page out.
type Batch struct {
	Fetcher     webclip.Fetcher
	Pipeline    *Pipeline
	Writer      webclip.PageWriter
	RateLimiter webclip.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration

	// Logger, if set, receives retry notices.
	Logger LogFunc
}

// Result holds the outcome of a batch run.
type Result struct {
	Saved    int
	Failed   int
	Skipped  int
	Fallback int
	Bytes    int
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Path      string
	Parser    string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	url      string
	path     string
	parser   string
	fallback bool
	bytes    int
	err      error
}

// Run processes urls and reports progress through the optional callback.
// Duplicate URLs (after canonicalization) are skipped. Per-page failures
// are counted, not returned; the error is non-nil only when ctx ends
// before the batch completes.
func (b *Batch) Run(ctx context.Context, urls []string, progress ProgressFunc) (*Result, error) {
	var result Result

	seen := bloom.NewURLSet(uint(max(len(urls), minBatchExpectedURLs)), batchFalsePositiveRate)
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen.Add(u) {
			result.Skipped++
			continue
		}
		unique = append(unique, u)
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	total := len(unique)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan pageResult, total)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, u := range unique {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				resultCh <- b.processURL(gctx, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var completed atomic.Int64
	for r := range resultCh {
		n := int(completed.Add(1))
		if r.err != nil {
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, URL: r.url, Error: r.err})
			}
			continue
		}
		result.Saved++
		result.Bytes += r.bytes
		if r.fallback {
			result.Fallback++
		}
		if progress != nil {
			progress(ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, URL: r.url, Path: r.path, Parser: r.parser})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: int(completed.Load()), Total: total})
	}

	if err := ctx.Err(); err != nil {
		return &result, err
	}
	return &result, nil
}

// processURL fetches, converts and writes a single URL.
func (b *Batch) processURL(ctx context.Context, pageURL string) pageResult {
	r := pageResult{url: pageURL}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		r.err = webclip.Errorf(webclip.EINVALID, "invalid URL %q", pageURL)
		return r
	}
	if b.RateLimiter != nil {
		if err := b.RateLimiter.Wait(ctx, u.Host); err != nil {
			r.err = err
			return r
		}
	}

	delays := b.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	resp, err := FetchWithRetryDelays(ctx, pageURL, b.Fetcher.Fetch, b.Logger, delays)
	if err != nil {
		r.err = err
		return r
	}

	finalURL := resp.URL
	if finalURL == "" {
		finalURL = pageURL
	}
	page, err := b.Pipeline.Convert(ctx, resp.HTML, finalURL)
	if err != nil {
		r.err = err
		return r
	}

	path, err := b.Writer.WritePage(ctx, page)
	if err != nil {
		r.err = err
		return r
	}

	r.path = path
	r.parser = page.Parser
	r.fallback = page.Parser != "" && !strings.HasPrefix(page.Parser, "template:")
	r.bytes = len(page.Markdown)
	return r
}
