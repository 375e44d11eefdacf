package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/webclip"
)

var _ webclip.Evaluator = (*CSSEvaluator)(nil)

// CSSEvaluator evaluates css rules. Selectors are compiled with cascadia so
// that a malformed selector is reported instead of silently matching nothing.
type CSSEvaluator struct{}

// NewCSSEvaluator creates a new CSSEvaluator.
func NewCSSEvaluator() *CSSEvaluator {
	return &CSSEvaluator{}
}

// Evaluate returns the values of the elements matching rule.Selector in
// document order.
func (e *CSSEvaluator) Evaluate(doc *webclip.Document, rule webclip.SelectorRule, opts webclip.EvalOptions) ([]string, error) {
	matcher, err := cascadia.Compile(rule.Selector)
	if err != nil {
		return nil, webclip.Errorf(webclip.ESELECTOR, "rule %s: invalid css selector %q: %v", rule.ID, rule.Selector, err)
	}
	re, err := rule.CompilePattern()
	if err != nil {
		return nil, err
	}

	values := webclip.NewValues(opts.Limit)
	goquery.NewDocumentFromNode(doc.Root).FindMatcher(matcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		values.Add(webclip.FilterPattern(selectionValue(s, rule.Attribute, opts.Kind), re))
		return !values.Full()
	})
	return values.List(), nil
}

// selectionValue reads an attribute when one is named, inner HTML for html
// kinds and normalized text otherwise.
func selectionValue(s *goquery.Selection, attribute string, kind webclip.ValueKind) string {
	if attribute != "" {
		v, _ := s.Attr(attribute)
		return strings.TrimSpace(v)
	}
	if kind == webclip.KindHTML {
		h, err := s.Html()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(h)
	}
	return webclip.NormalizeSpace(s.Text())
}
