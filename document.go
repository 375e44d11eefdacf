package webclip

import (
	"net/url"

	"golang.org/x/net/html"
)

// Document is a parsed, pruned page. It is built once per extraction and
// shared read-only by every rule evaluated during that extraction.
type Document struct {
	URL *url.URL

	// Raw is the HTML as supplied by the caller.
	Raw string

	// Root is the pruned DOM.
	Root *html.Node

	// HTML is Root rendered back to markup.
	HTML string
}

// DocumentParser builds Documents, removing excluded elements before any
// rule can see them.
type DocumentParser interface {
	Parse(rawHTML string, pageURL *url.URL, exclude ExcludePatterns) (*Document, error)
}

// EvalOptions shapes the values an Evaluator returns.
type EvalOptions struct {
	// Kind selects text, inner HTML or list extraction.
	Kind ValueKind

	// Limit caps the number of values returned. Zero means one.
	Limit int
}

// Evaluator evaluates selector rules of one strategy against a Document.
// Implementations return ESELECTOR for malformed expressions and an empty
// slice when nothing matched.
type Evaluator interface {
	Evaluate(doc *Document, rule SelectorRule, opts EvalOptions) ([]string, error)
}

// CMSOverlay is a detected CMS with its per-field override rules.
type CMSOverlay struct {
	CMS       CMS
	Overrides map[Field][]SelectorRule
}

// CMSDetector identifies the CMS that generated a document.
type CMSDetector interface {
	// Detect returns nil when no fingerprint matches.
	Detect(doc *Document) *CMSOverlay
}

// Transform is a named, idempotent content transform.
type Transform interface {
	Name() string
	Apply(contentHTML string, pageURL *url.URL) (string, error)
}
