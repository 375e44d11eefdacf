package webclip

import (
	"context"
	"regexp"
)

// SitemapService lists page URLs published in a sitemap. It feeds batch
// conversion; the extraction engine itself never fetches.
type SitemapService interface {
	// SitemapURLs reads the sitemap at sitemapURL, following sitemap
	// indexes, and returns page URLs that pass filter (nil passes all).
	SitemapURLs(ctx context.Context, sitemapURL string, filter *URLFilter) ([]string, error)
}

// URLFilter keeps URLs matching any Include pattern (or all URLs when
// Include is empty) and then drops those matching any Exclude pattern.
type URLFilter struct {
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// Match reports whether url passes the filter. A nil filter passes all URLs.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}
	if len(f.Include) > 0 && !anyMatch(f.Include, url) {
		return false
	}
	return !anyMatch(f.Exclude, url)
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// LinkExtractor lists article links found on an index page, such as a blog
// front page or an archive listing.
type LinkExtractor interface {
	// Links returns absolute same-host links inside elements matching
	// selector, in document order and without duplicates. An empty selector
	// uses the page's main content area.
	Links(html, pageURL, selector string) ([]string, error)
}
