package mock

import (
	"context"

	"github.com/fwojciec/webclip"
)

var (
	_ webclip.Extractor        = (*Extractor)(nil)
	_ webclip.ArticleExtractor = (*ArticleExtractor)(nil)
)

// Extractor is a mock implementation of webclip.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*webclip.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*webclip.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

// ArticleExtractor is a mock implementation of webclip.ArticleExtractor.
type ArticleExtractor struct {
	ExtractFn func(ctx context.Context, html, pageURL string) (*webclip.Result, error)
}

func (e *ArticleExtractor) Extract(ctx context.Context, html, pageURL string) (*webclip.Result, error) {
	return e.ExtractFn(ctx, html, pageURL)
}
