package mock

import (
	"context"

	"github.com/fwojciec/webclip"
)

var _ webclip.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of webclip.SitemapService.
type SitemapService struct {
	SitemapURLsFn func(ctx context.Context, sitemapURL string, filter *webclip.URLFilter) ([]string, error)
}

func (s *SitemapService) SitemapURLs(ctx context.Context, sitemapURL string, filter *webclip.URLFilter) ([]string, error) {
	return s.SitemapURLsFn(ctx, sitemapURL, filter)
}

var _ webclip.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of webclip.LinkExtractor.
type LinkExtractor struct {
	LinksFn func(html, pageURL, selector string) ([]string, error)
}

func (e *LinkExtractor) Links(html, pageURL, selector string) ([]string, error) {
	return e.LinksFn(html, pageURL, selector)
}
