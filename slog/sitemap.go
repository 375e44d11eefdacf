// Package slog decorates webclip services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webclip"
)

// Ensure LoggingSitemapService implements webclip.SitemapService.
var _ webclip.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   webclip.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next webclip.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// SitemapURLs delegates to the wrapped service. Failures log at Warn with
// the error; successful reads log at Info with the URL count and whether a
// filter was applied.
func (s *LoggingSitemapService) SitemapURLs(ctx context.Context, sitemapURL string, filter *webclip.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		if err != nil {
			s.logger.Warn("sitemap",
				"url", sitemapURL,
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		s.logger.Info("sitemap",
			"url", sitemapURL,
			"count", len(urls),
			"filtered", filter != nil,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.SitemapURLs(ctx, sitemapURL, filter)
}
