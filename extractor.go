package webclip

import "context"

// ExtractResult is the article found by a heuristic extractor.
type ExtractResult struct {
	Title  string
	Author string

	// Date is YYYY-MM-DD, or empty when the page carries no publish date.
	Date string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor is a heuristic content extractor. Callers use one as the
// alternate parser when the template engine rejects a page.
type Extractor interface {
	Extract(html, pageURL string) (*ExtractResult, error)
}

// ArticleExtractor converts a page into a structured article using templates.
type ArticleExtractor interface {
	// Extract never fetches. A rejected page is reported through
	// Result.Verdict; the error is reserved for invalid input and
	// cancellation.
	Extract(ctx context.Context, html, pageURL string) (*Result, error)
}
