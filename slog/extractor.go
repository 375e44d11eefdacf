package slog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/webclip"
)

// Ensure LoggingExtractor implements webclip.ArticleExtractor.
var _ webclip.ArticleExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an ArticleExtractor and logs each extraction.
// Rejected pages log at WARN with the gate's reasons; warnings are logged
// at DEBUG.
type LoggingExtractor struct {
	next   webclip.ArticleExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next webclip.ArticleExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, html, pageURL string) (res *webclip.Result, err error) {
	defer func(begin time.Time) {
		duration := time.Since(begin)
		if err != nil || res == nil {
			e.logger.Error("extract", "url", pageURL, "duration", duration, "err", err)
			return
		}

		attrs := []any{
			"url", pageURL,
			"template", res.Template,
			"verdict", res.Verdict.String(),
			"duration", duration,
		}
		if res.CMS != "" {
			attrs = append(attrs, "cms", string(res.CMS))
		}
		if res.Verdict == webclip.VerdictFail {
			attrs = append(attrs, "code", res.FailCode, "reasons", strings.Join(res.Reasons, "; "))
			e.logger.Warn("extract", attrs...)
		} else {
			e.logger.Info("extract", attrs...)
		}
		for _, w := range res.Warnings {
			e.logger.Debug("extract warning", "url", pageURL, "warning", w)
		}
	}(time.Now())
	return e.next.Extract(ctx, html, pageURL)
}
