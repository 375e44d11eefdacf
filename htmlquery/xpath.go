// Package htmlquery evaluates xpath rules with antchfx/htmlquery.
package htmlquery

import (
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/fwojciec/webclip"
	"golang.org/x/net/html"
)

var _ webclip.Evaluator = (*Evaluator)(nil)

// Evaluator evaluates xpath rules against the pruned DOM shared with the
// css evaluator.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate runs rule.Selector as an XPath 1.0 expression. Node-set results
// yield one value per node in document order; string, number and boolean
// results such as string(//title) yield a single value.
func (e *Evaluator) Evaluate(doc *webclip.Document, rule webclip.SelectorRule, opts webclip.EvalOptions) ([]string, error) {
	expr, err := xpath.Compile(rule.Selector)
	if err != nil {
		return nil, webclip.Errorf(webclip.ESELECTOR, "rule %s: invalid xpath %q: %v", rule.ID, rule.Selector, err)
	}
	re, err := rule.CompilePattern()
	if err != nil {
		return nil, err
	}

	values := webclip.NewValues(opts.Limit)
	switch v := expr.Evaluate(htmlquery.CreateXPathNavigator(doc.Root)).(type) {
	case *xpath.NodeIterator:
		for !values.Full() && v.MoveNext() {
			nav, ok := v.Current().(*htmlquery.NodeNavigator)
			if !ok {
				continue
			}
			if nav.NodeType() == xpath.AttributeNode {
				values.Add(webclip.FilterPattern(strings.TrimSpace(nav.Value()), re))
				continue
			}
			values.Add(webclip.FilterPattern(nodeValue(nav.Current(), rule.Attribute, opts.Kind), re))
		}
	case string:
		values.Add(webclip.FilterPattern(webclip.NormalizeSpace(v), re))
	case float64:
		values.Add(webclip.FilterPattern(strconv.FormatFloat(v, 'f', -1, 64), re))
	case bool:
		values.Add(webclip.FilterPattern(strconv.FormatBool(v), re))
	}
	return values.List(), nil
}

// nodeValue reads an attribute when one is named, inner HTML for html kinds
// and normalized text otherwise.
func nodeValue(n *html.Node, attribute string, kind webclip.ValueKind) string {
	if attribute != "" {
		return strings.TrimSpace(htmlquery.SelectAttr(n, attribute))
	}
	if kind == webclip.KindHTML {
		return strings.TrimSpace(htmlquery.OutputHTML(n, false))
	}
	return webclip.NormalizeSpace(htmlquery.InnerText(n))
}
