package webclip

import "strings"

// Verdict is the quality gate's decision about a result.
type Verdict int

// Quality gate outcomes.
const (
	VerdictPass Verdict = iota
	VerdictWarn
	VerdictFail
)

// String returns the lowercase verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictWarn:
		return "warn"
	case VerdictFail:
		return "fail"
	}
	return "unknown"
}

// FieldResult records how a field was resolved.
type FieldResult struct {
	Value  string
	Values []string

	// RuleID identifies the winning rule. Empty when unresolved.
	RuleID   string
	Strategy Strategy
}

// Resolved reports whether any rule produced a value.
func (r FieldResult) Resolved() bool {
	return r.RuleID != ""
}

// Result is the structured article produced by one extraction.
type Result struct {
	URL      string
	Template string
	CMS      CMS

	Title       string
	ContentHTML string
	// Text is the plain text of the post-processed content.
	Text   string
	Author string
	Date   string
	Cover  string
	Images []string

	// Fields records provenance for primary fields and metadata keys.
	Fields   map[string]FieldResult
	Metadata map[string]string
	Markdown string

	Verdict  Verdict
	Warnings []string

	// Reasons explains a failing verdict.
	Reasons []string

	// FailCode is EQUALITY, ETIMEOUT, ETOOLARGE or EINTERNAL when Verdict
	// is VerdictFail.
	FailCode string
}

// Warn attaches a warning to the result.
func (r *Result) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Fail marks the result as rejected.
func (r *Result) Fail(code, reason string) {
	r.Verdict = VerdictFail
	if r.FailCode == "" {
		r.FailCode = code
	}
	r.Reasons = append(r.Reasons, reason)
}

// Err returns nil unless the result failed, in which case the returned
// error carries FailCode so callers can switch to an alternate parser.
func (r *Result) Err() error {
	if r.Verdict != VerdictFail {
		return nil
	}
	return Errorf(r.FailCode, "extraction rejected for %s: %s", r.URL, strings.Join(r.Reasons, "; "))
}
