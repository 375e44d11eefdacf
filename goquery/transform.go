package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webclip"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ webclip.Transform = (*domTransform)(nil)

// domTransform rewrites a content fragment in place.
type domTransform struct {
	name  string
	apply func(sel *goquery.Selection, pageURL *url.URL)

	// trim strips leading and trailing whitespace from the rendered result.
	trim bool
}

// Transforms returns the DOM transforms: remove_scripts, remove_styles,
// trim_whitespace and normalize_links. Every transform is idempotent.
func Transforms() []webclip.Transform {
	return []webclip.Transform{
		&domTransform{name: webclip.TransformRemoveScripts, apply: removeScripts},
		&domTransform{name: webclip.TransformRemoveStyles, apply: removeStyles},
		&domTransform{name: webclip.TransformTrimWhitespace, apply: trimWhitespace, trim: true},
		&domTransform{name: webclip.TransformNormalizeLinks, apply: normalizeLinks},
	}
}

// Name returns the transform name used in templates.
func (t *domTransform) Name() string {
	return t.name
}

// Apply parses contentHTML as a fragment, rewrites it and renders it back.
func (t *domTransform) Apply(contentHTML string, pageURL *url.URL) (string, error) {
	doc, err := parseFragment(contentHTML)
	if err != nil {
		return "", webclip.Errorf(webclip.EINVALID, "%s: failed to parse content: %v", t.name, err)
	}

	t.apply(doc.Selection, pageURL)

	out, err := doc.Html()
	if err != nil {
		return "", webclip.Errorf(webclip.EINTERNAL, "%s: failed to render content: %v", t.name, err)
	}
	if t.trim {
		out = strings.TrimSpace(out)
	}
	return out, nil
}

func removeScripts(sel *goquery.Selection, _ *url.URL) {
	sel.Find("script, noscript").Remove()
	sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		var handlers []string
		for _, a := range s.Get(0).Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				handlers = append(handlers, a.Key)
			}
		}
		for _, key := range handlers {
			s.RemoveAttr(key)
		}
		if href, ok := s.Attr("href"); ok && strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") {
			s.RemoveAttr("href")
		}
	})
}

func removeStyles(sel *goquery.Selection, _ *url.URL) {
	sel.Find(`style, link[rel~="stylesheet"]`).Remove()
	sel.Find("[style]").RemoveAttr("style")
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// trimWhitespace collapses whitespace runs in text outside preformatted
// elements.
func trimWhitespace(sel *goquery.Selection, _ *url.URL) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			n.Data = whitespaceRun.ReplaceAllString(n.Data, " ")
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Pre, atom.Code, atom.Textarea, atom.Script, atom.Style:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
}

func normalizeLinks(sel *goquery.Selection, pageURL *url.URL) {
	if pageURL == nil {
		return
	}
	for _, attr := range []string{"href", "src", "poster"} {
		sel.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(attr)
			if resolved := webclip.ResolveURL(pageURL, v); resolved != v {
				s.SetAttr(attr, resolved)
			}
		})
	}
}
