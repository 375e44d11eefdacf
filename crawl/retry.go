package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/webclip"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (*webclip.Response, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry attempts to fetch a URL with exponential backoff retry logic.
// It retries up to 3 times (4 total attempts) with delays of 1s, 2s, 4s.
// The logger function, if provided, is called for each retry attempt.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger LogFunc) (*webclip.Response, error) {
	return FetchWithRetryDelays(ctx, url, fetch, logger, DefaultRetryDelays())
}

// FetchWithRetryDelays is like FetchWithRetry but allows configurable delays.
// ENOTFOUND, EINVALID and ETOOLARGE errors are returned at once: repeating the request
// cannot change them.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (*webclip.Response, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := fetch(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if logger != nil {
			logger("  retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

func retryable(err error) bool {
	switch webclip.ErrorCode(err) {
	case webclip.ENOTFOUND, webclip.EINVALID, webclip.ETOOLARGE:
		return false
	}
	return true
}
