package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/webclip"
)

var _ webclip.LinkExtractor = (*LinkExtractor)(nil)

// defaultLinkScopes are tried in order; the first that matches anything
// bounds the search. body is the last resort.
var defaultLinkScopes = []string{"main", "article", "[role=main]", "body"}

// chromeSelector matches site chrome whose links are never articles.
const chromeSelector = "nav, header, footer, aside, [role=navigation]"

// LinkExtractor finds article links on index pages.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// Links implements webclip.LinkExtractor. Links inside navigation, headers,
// footers and sidebars are skipped, as are non-HTTP schemes and links back
// to the page itself. Fragments are dropped before de-duplication.
func (e *LinkExtractor) Links(html, pageURL, selector string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, webclip.Errorf(webclip.EINVALID, "invalid page URL %q", pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webclip.Errorf(webclip.EINVALID, "failed to parse HTML: %v", err)
	}

	var scope *goquery.Selection
	if selector != "" {
		m, err := cascadia.Compile(selector)
		if err != nil {
			return nil, webclip.Errorf(webclip.ESELECTOR, "invalid link selector %q: %v", selector, err)
		}
		scope = doc.FindMatcher(m)
	} else {
		for _, s := range defaultLinkScopes {
			if scope = doc.Find(s); scope.Length() > 0 {
				break
			}
		}
	}

	var links []string
	seen := make(map[string]bool)
	scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if selector == "" && a.Closest(chromeSelector).Length() > 0 {
			return
		}
		href, _ := a.Attr("href")
		if isNonHTTPLink(href) {
			return
		}
		resolved := resolveLink(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links, nil
}

// resolveLink resolves href against base, dropping the fragment. Returns
// empty for unparseable, cross-host or self-referential links.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if webclip.NormalizeHost(resolved.Host) != webclip.NormalizeHost(base.Host) {
		return ""
	}

	self := *base
	self.Fragment = ""
	self.RawFragment = ""
	if resolved.String() == self.String() {
		return ""
	}
	return resolved.String()
}

// isNonHTTPLink reports whether href uses a scheme that cannot be fetched.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
