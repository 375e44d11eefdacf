// Package goquery implements CSS-based document handling with goquery:
// parsing and pruning, the css evaluator, CMS fingerprints and the DOM
// content transforms.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webclip"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ webclip.DocumentParser = (*Parser)(nil)

// Parser builds Documents and prunes excluded elements before any rule
// can see them.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses rawHTML, removes every element matching exclude and renders
// the pruned tree once for text_pattern rules.
func (p *Parser) Parse(rawHTML string, pageURL *url.URL, exclude webclip.ExcludePatterns) (*webclip.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, webclip.Errorf(webclip.EINVALID, "failed to parse HTML: %v", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	if !exclude.Empty() {
		prune(doc.Selection, exclude)
	}

	rendered, err := doc.Html()
	if err != nil {
		return nil, webclip.Errorf(webclip.EINTERNAL, "failed to render HTML: %v", err)
	}

	return &webclip.Document{
		URL:  pageURL,
		Raw:  rawHTML,
		Root: root,
		HTML: rendered,
	}, nil
}

// prune removes elements whose tag, id or any class token is excluded.
// The document skeleton (html, head, body) is never removed.
func prune(sel *goquery.Selection, exclude webclip.ExcludePatterns) {
	tags := toSet(exclude.Tags, strings.ToLower)
	ids := toSet(exclude.IDs, nil)
	classes := toSet(exclude.Classes, nil)

	sel.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		n := s.Get(0)
		switch n.DataAtom {
		case atom.Html, atom.Head, atom.Body:
			return false
		}
		if tags[n.Data] {
			return true
		}
		if id, ok := s.Attr("id"); ok && ids[id] {
			return true
		}
		if class, ok := s.Attr("class"); ok {
			for _, c := range strings.Fields(class) {
				if classes[c] {
					return true
				}
			}
		}
		return false
	}).Remove()
}

func toSet(items []string, normalize func(string) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if normalize != nil {
			item = normalize(item)
		}
		if item != "" {
			set[item] = true
		}
	}
	return set
}
