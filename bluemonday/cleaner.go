// Package bluemonday implements the clean_html transform with a
// bluemonday sanitization policy.
package bluemonday

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fwojciec/webclip"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ webclip.Transform = (*Cleaner)(nil)

var languageClass = regexp.MustCompile(`^language-[\w+#-]+$`)

// Cleaner sanitizes content with the UGC policy and drops elements left
// without content. A Cleaner is safe for concurrent use.
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner creates a Cleaner. Code language classes survive so that the
// Markdown converter can fence code blocks with their language.
func NewCleaner() *Cleaner {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("class").Matching(languageClass).OnElements("code", "pre")
	return &Cleaner{policy: p}
}

// Name returns the transform name used in templates.
func (c *Cleaner) Name() string {
	return webclip.TransformCleanHTML
}

// Apply sanitizes contentHTML and removes empty elements.
func (c *Cleaner) Apply(contentHTML string, _ *url.URL) (string, error) {
	clean := c.policy.Sanitize(contentHTML)

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(clean), body)
	if err != nil {
		return "", webclip.Errorf(webclip.EINTERNAL, "clean_html: failed to parse sanitized content: %v", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		if n.Type == html.ElementNode && removeEmpty(n) {
			continue
		}
		if err := html.Render(&b, n); err != nil {
			return "", webclip.Errorf(webclip.EINTERNAL, "clean_html: failed to render content: %v", err)
		}
	}
	return b.String(), nil
}

// contentElements carry meaning without text.
var contentElements = map[atom.Atom]bool{
	atom.Img: true, atom.Br: true, atom.Hr: true, atom.Video: true, atom.Audio: true,
	atom.Source: true, atom.Iframe: true, atom.Picture: true, atom.Td: true, atom.Th: true,
}

// removeEmpty removes empty descendants of n bottom-up and reports whether
// n itself is empty and should be dropped by its caller.
func removeEmpty(n *html.Node) bool {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && removeEmpty(c) {
			n.RemoveChild(c)
		}
		c = next
	}

	if contentElements[n.DataAtom] {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		}
	}
	return true
}
