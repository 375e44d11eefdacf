package webclip

import "context"

// Response is a fetched page after charset decoding.
type Response struct {
	// URL is the final URL after redirects.
	URL    string
	HTML   string
	Status int
}

// Fetcher retrieves page HTML from URLs. Implementations may use a plain
// HTTP client or browser automation for JavaScript-rendered content.
type Fetcher interface {
	// Fetch retrieves the page. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
