package mock

import (
	"net/url"

	"github.com/fwojciec/webclip"
)

// Compile-time interface verification.
var (
	_ webclip.DocumentParser = (*DocumentParser)(nil)
	_ webclip.Evaluator      = (*Evaluator)(nil)
	_ webclip.CMSDetector    = (*CMSDetector)(nil)
	_ webclip.Transform      = (*Transform)(nil)
)

// DocumentParser is a mock implementation of webclip.DocumentParser.
type DocumentParser struct {
	ParseFn func(rawHTML string, pageURL *url.URL, exclude webclip.ExcludePatterns) (*webclip.Document, error)
}

func (p *DocumentParser) Parse(rawHTML string, pageURL *url.URL, exclude webclip.ExcludePatterns) (*webclip.Document, error) {
	return p.ParseFn(rawHTML, pageURL, exclude)
}

// Evaluator is a mock implementation of webclip.Evaluator.
type Evaluator struct {
	EvaluateFn func(doc *webclip.Document, rule webclip.SelectorRule, opts webclip.EvalOptions) ([]string, error)
}

func (e *Evaluator) Evaluate(doc *webclip.Document, rule webclip.SelectorRule, opts webclip.EvalOptions) ([]string, error) {
	return e.EvaluateFn(doc, rule, opts)
}

// CMSDetector is a mock implementation of webclip.CMSDetector.
type CMSDetector struct {
	DetectFn func(doc *webclip.Document) *webclip.CMSOverlay
}

func (d *CMSDetector) Detect(doc *webclip.Document) *webclip.CMSOverlay {
	return d.DetectFn(doc)
}

// Transform is a mock implementation of webclip.Transform.
type Transform struct {
	NameFn  func() string
	ApplyFn func(contentHTML string, pageURL *url.URL) (string, error)
}

func (t *Transform) Name() string {
	return t.NameFn()
}

func (t *Transform) Apply(contentHTML string, pageURL *url.URL) (string, error) {
	return t.ApplyFn(contentHTML, pageURL)
}
