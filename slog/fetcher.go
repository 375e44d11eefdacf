package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webclip"
)

// Ensure LoggingFetcher implements webclip.Fetcher.
var _ webclip.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs every request.
type LoggingFetcher struct {
	next   webclip.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webclip.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs url, status, bytes and duration.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *webclip.Response, err error) {
	defer func(begin time.Time) {
		var bytes, status int
		if resp != nil {
			bytes, status = len(resp.HTML), resp.Status
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
