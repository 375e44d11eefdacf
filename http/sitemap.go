package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/webclip"
)

// Ensure SitemapService implements webclip.SitemapService.
var _ webclip.SitemapService = (*SitemapService)(nil)

// maxSitemapDepth bounds how deeply sitemap indexes may nest.
const maxSitemapDepth = 4

// SitemapService reads page URLs from sitemaps via HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// SitemapURLs returns the page URLs published by sitemapURL, in document
// order and without duplicates. sitemapURL may name a sitemap or sitemap
// index directly; a site root is resolved through the Sitemap: lines of
// its robots.txt, falling back to /sitemap.xml. A site without a sitemap
// yields an empty slice.
func (s *SitemapService) SitemapURLs(ctx context.Context, sitemapURL string, filter *webclip.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(sitemapURL)
	if err != nil || u.Host == "" {
		return nil, webclip.Errorf(webclip.EINVALID, "invalid sitemap URL %q", sitemapURL)
	}

	sitemaps := []string{sitemapURL}
	if !isSitemapPath(u.Path) {
		root := url.URL{Scheme: u.Scheme, Host: u.Host}
		sitemaps, err = s.findSitemapURLs(ctx, &root)
		if err != nil {
			return nil, err
		}
	}

	urls := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sm := range sitemaps {
		found, err := s.processSitemap(ctx, sm, seenSitemaps, 0)
		if err != nil {
			return nil, err
		}
		for _, pageURL := range found {
			if seenURLs[pageURL] || !filter.Match(pageURL) {
				continue
			}
			seenURLs[pageURL] = true
			urls = append(urls, pageURL)
		}
	}
	return urls, nil
}

func isSitemapPath(p string) bool {
	return strings.EqualFold(path.Ext(p), ".xml") || strings.Contains(strings.ToLower(p), "sitemap")
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found"
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}
	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			sitemaps = append(sitemaps, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, depth int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] || depth > maxSitemapDepth {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, webclip.Errorf(webclip.EINVALID, "parsing sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, webclip.Errorf(webclip.EINVALID, "empty sitemap %s", sitemapURL)
	}

	if root.Tag != "sitemapindex" {
		return locs(root, "url"), nil
	}

	var all []string
	for _, child := range locs(root, "sitemap") {
		urls, err := s.processSitemap(ctx, child, seen, depth+1)
		if err != nil {
			return nil, err
		}
		all = append(all, urls...)
	}
	return all, nil
}

// locs returns the trimmed <loc> text of each child element named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, webclip.Errorf(webclip.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return resp.Body, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
