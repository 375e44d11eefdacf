// Package gojson evaluates text_pattern rules. Rules with a path read
// structured-data blocks such as JSON-LD with goccy/go-json; the rule's
// regex is the fallback for blocks that are not valid JSON.
package gojson

import (
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/webclip"
	json "github.com/goccy/go-json"
)

var _ webclip.Evaluator = (*Evaluator)(nil)

// Evaluator evaluates text_pattern rules.
//
// Without a selector the pattern runs over the pruned, rendered HTML, so
// excluded elements never leak into values. With a selector the pattern (or
// path) runs over the text of each matching block, typically
// script[type="application/ld+json"].
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the values produced by rule in document order.
func (e *Evaluator) Evaluate(doc *webclip.Document, rule webclip.SelectorRule, opts webclip.EvalOptions) ([]string, error) {
	re, err := rule.CompilePattern()
	if err != nil {
		return nil, err
	}

	var path *json.Path
	if rule.Path != "" {
		if path, err = json.CreatePath(rule.Path); err != nil {
			return nil, webclip.Errorf(webclip.ESELECTOR, "rule %s: invalid path %q: %v", rule.ID, rule.Path, err)
		}
	}

	blocks, err := isolate(doc, rule)
	if err != nil {
		return nil, err
	}

	values := webclip.NewValues(opts.Limit)
	for _, block := range blocks {
		if values.Full() {
			break
		}
		data := []byte(strings.TrimSpace(block))
		if path != nil && json.Valid(data) {
			for _, v := range extractPath(path, data) {
				values.Add(shape(v, opts.Kind))
			}
			continue
		}
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatch(block, -1) {
			if values.Full() {
				break
			}
			values.Add(shape(group(m), opts.Kind))
		}
	}
	return values.List(), nil
}

// isolate returns the text the rule runs over: the rendered document, or
// the text of each block matched by the rule's CSS selector.
func isolate(doc *webclip.Document, rule webclip.SelectorRule) ([]string, error) {
	if rule.Selector == "" {
		return []string{doc.HTML}, nil
	}
	matcher, err := cascadia.Compile(rule.Selector)
	if err != nil {
		return nil, webclip.Errorf(webclip.ESELECTOR, "rule %s: invalid block selector %q: %v", rule.ID, rule.Selector, err)
	}
	var blocks []string
	goquery.NewDocumentFromNode(doc.Root).FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	return blocks, nil
}

// extractPath reads path from data, then from each member of a top-level
// array and of an @graph array, stopping at the first candidate that yields
// a value.
func extractPath(path *json.Path, data []byte) []string {
	candidates := [][]byte{data}

	var array []json.RawMessage
	if json.Unmarshal(data, &array) == nil {
		candidates = candidates[:0]
		for _, item := range array {
			candidates = append(candidates, []byte(item))
		}
	} else {
		var graph struct {
			Graph []json.RawMessage `json:"@graph"`
		}
		if json.Unmarshal(data, &graph) == nil {
			for _, item := range graph.Graph {
				candidates = append(candidates, []byte(item))
			}
		}
	}

	for _, c := range candidates {
		raw, err := path.Extract(c)
		if err != nil {
			continue
		}
		var out []string
		for _, r := range raw {
			out = append(out, scalars(r)...)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// scalars flattens a JSON value into strings. Objects contribute their
// name, falling back to url and @id, as JSON-LD references usually do.
func scalars(raw []byte) []string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(t))
		case []any:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			for _, key := range []string{"name", "url", "@id"} {
				if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
					return
				}
			}
		}
	}
	walk(v)
	return out
}

// group returns capture group 1, or the whole match when there is none.
func group(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// shape decodes entities and normalizes whitespace unless the caller asked
// for HTML.
func shape(s string, kind webclip.ValueKind) string {
	if kind == webclip.KindHTML {
		return strings.TrimSpace(s)
	}
	return webclip.NormalizeSpace(html.UnescapeString(s))
}
