package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/goquery"
)

// resolver evaluates rule chains for one extraction.
type resolver struct {
	evaluator func(webclip.Strategy) webclip.Evaluator
	doc       *webclip.Document
	policy    webclip.StrategyPolicy
	res       *webclip.Result
}

// resolve evaluates the rules tagged with the primary strategy in list
// order, then the rules of each fallback strategy in turn. The first rule
// yielding a value that passes its validation wins. Rule errors become
// warnings and never stop resolution; only ctx errors are returned.
func (r *resolver) resolve(ctx context.Context, name string, rules []webclip.SelectorRule, kind webclip.ValueKind) (webclip.FieldResult, error) {
	for _, s := range r.policy.Order() {
		ev := r.evaluator(s)
		if ev == nil {
			continue
		}
		opts := webclip.EvalOptions{Kind: kind, Limit: 1}
		if kind == webclip.KindList {
			opts.Limit = r.policy.MaxMatches(s)
		}

		for _, rule := range rules {
			if rule.Strategy != s {
				continue
			}
			if err := ctx.Err(); err != nil {
				return webclip.FieldResult{}, err
			}

			values, err := ev.Evaluate(r.doc, rule, opts)
			if err != nil {
				r.res.Warn(fmt.Sprintf("%s: %s", name, webclip.ErrorMessage(err)))
				continue
			}

			accepted := r.accept(name, kind, rule.Validation, values)
			if len(accepted) == 0 {
				continue
			}

			fr := webclip.FieldResult{RuleID: rule.ID, Strategy: s, Value: accepted[0]}
			if kind == webclip.KindList {
				fr.Values = accepted
				fr.Value = strings.Join(accepted, ", ")
			}
			return fr, nil
		}
	}
	return webclip.FieldResult{}, nil
}

// accept shapes raw values for their kind and keeps those passing v.
func (r *resolver) accept(name string, kind webclip.ValueKind, v *webclip.Validation, values []string) []string {
	var out []string
	for _, value := range values {
		switch {
		case kind == webclip.KindURL, name == string(webclip.FieldImages):
			value = webclip.ResolveURL(r.doc.URL, value)
		case kind == webclip.KindDate:
			value = normalizeDate(value)
		}
		if value == "" {
			continue
		}

		checked := value
		if kind == webclip.KindHTML {
			checked = goquery.PlainText(value)
		}
		if v.Check(checked) {
			out = append(out, value)
		}
	}
	return out
}

// fieldRules returns the rule chain for field. When a CMS was detected its
// overrides come first: the template's own cms_patterns entry for that CMS
// and field when present, the detector's defaults otherwise. A rule already
// in the chain is not added twice.
func fieldRules(t *webclip.Template, overlay *webclip.CMSOverlay, field webclip.Field) []webclip.SelectorRule {
	base := t.Selectors[field]
	if overlay == nil {
		return base
	}

	overrides, ok := t.CMSPatterns[overlay.CMS][field]
	if !ok {
		overrides = overlay.Overrides[field]
	}
	if len(overrides) == 0 {
		return base
	}

	seen := make(map[string]bool, len(overrides)+len(base))
	rules := make([]webclip.SelectorRule, 0, len(overrides)+len(base))
	for _, group := range [][]webclip.SelectorRule{overrides, base} {
		for _, rule := range group {
			key := ruleKey(rule)
			if seen[key] {
				continue
			}
			seen[key] = true
			rules = append(rules, rule)
		}
	}
	return rules
}

func ruleKey(r webclip.SelectorRule) string {
	return strings.Join([]string{string(r.Strategy), r.Selector, r.Attribute, r.Pattern, r.Path}, "\x00")
}

// normalizeDate formats recognizable dates as YYYY-MM-DD in their own
// offset and returns anything else verbatim.
func normalizeDate(value string) string {
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}

// stripTitleSuffix cuts the title at the last occurrence of the first
// declared separator it contains, so "Post - Blog" becomes "Post".
func stripTitleSuffix(title string, separators []string) string {
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		i := strings.LastIndex(title, sep)
		if i < 0 {
			continue
		}
		if head := strings.TrimSpace(title[:i]); head != "" {
			return head
		}
		return title
	}
	return title
}
