package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/webclip"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements webclip.Extractor at compile time.
var _ webclip.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract the main article from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the article. Relative links in
// the content are resolved against pageURL when it parses.
func (e *Extractor) Extract(rawHTML, pageURL string) (*webclip.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webclip.Errorf(webclip.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, webclip.Errorf(webclip.EINTERNAL, "readability: %v", err)
	}

	out := &webclip.ExtractResult{
		Title:       article.Title,
		Author:      article.Byline,
		ContentHTML: article.Content,
	}
	if article.PublishedTime != nil {
		out.Date = article.PublishedTime.Format("2006-01-02")
	}
	return out, nil
}
