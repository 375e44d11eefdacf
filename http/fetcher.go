// Package http fetches pages and sitemaps over plain HTTP.
package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/webclip"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 16 << 20

// DefaultUserAgent identifies webclip to servers.
const DefaultUserAgent = "webclip/1.0 (+https://github.com/fwojciec/webclip)"

// Ensure Fetcher implements webclip.Fetcher at compile time.
var _ webclip.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages using HTTP requests and decodes them to UTF-8.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBody   int64
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize caps the bytes read from a response body.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		maxBody:   DefaultMaxBodySize,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the page at url. Redirects are followed and the final URL
// is reported. A non-2xx status is returned as an error: ENOTFOUND for 404
// and 410, EINTERNAL otherwise.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*webclip.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, webclip.Errorf(webclip.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := webclip.EINTERNAL
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			code = webclip.ENOTFOUND
		}
		return nil, webclip.Errorf(code, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBody {
		return nil, webclip.Errorf(webclip.ETOOLARGE, "body of %s exceeds %d bytes", url, f.maxBody)
	}

	return &webclip.Response{
		URL:    resp.Request.URL.String(),
		HTML:   Decode(body, resp.Header.Get("Content-Type")),
		Status: resp.StatusCode,
	}, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// Decode converts body to UTF-8. A byte-order mark or the Content-Type
// charset is trusted; otherwise a <meta> declaration or valid UTF-8 is;
// only when all of those are silent is the charset sniffed from the bytes.
func Decode(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && name == "windows-1252" {
		if sniffed := sniff(body); sniffed != "" {
			if e, _ := charset.Lookup(sniffed); e != nil {
				enc = e
			}
		}
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}

// sniff guesses the charset of body, or returns "" when unsure.
func sniff(body []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil || result.Confidence < 50 {
		return ""
	}
	return strings.ToLower(result.Charset)
}
