package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/webclip"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements webclip.Extractor at compile time.
var _ webclip.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract the main article from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the article. pageURL, when it
// parses, lets trafilatura resolve relative links and skip boilerplate
// specific to the host.
func (e *Extractor) Extract(rawHTML, pageURL string) (*webclip.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webclip.Errorf(webclip.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, webclip.Errorf(webclip.EINTERNAL, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	out := &webclip.ExtractResult{
		Title:       result.Metadata.Title,
		Author:      result.Metadata.Author,
		ContentHTML: contentHTML,
	}
	if !result.Metadata.Date.IsZero() {
		out.Date = result.Metadata.Date.Format("2006-01-02")
	}
	return out, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
