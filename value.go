package webclip

import (
	"net/url"
	"regexp"
	"strings"
)

// CompilePattern compiles the rule's pattern. It returns nil when the rule
// has no pattern and ESELECTOR when the pattern is malformed.
func (r SelectorRule) CompilePattern() (*regexp.Regexp, error) {
	if r.Pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, Errorf(ESELECTOR, "rule %s: invalid pattern %q: %v", r.ID, r.Pattern, err)
	}
	return re, nil
}

// FilterPattern applies re to value and returns capture group 1 of the first
// match, or the whole match when re has no groups. A nil re returns value
// unchanged; no match returns "".
func FilterPattern(value string, re *regexp.Regexp) string {
	if re == nil {
		return value
	}
	m := re.FindStringSubmatch(value)
	switch {
	case m == nil:
		return ""
	case len(m) > 1:
		return m[1]
	default:
		return m[0]
	}
}

// NormalizeSpace collapses runs of whitespace to single spaces and trims
// both ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Values collects distinct non-empty values up to a limit, in insertion order.
type Values struct {
	limit int
	seen  map[string]struct{}
	list  []string
}

// NewValues returns a collector holding at most limit values. A limit below
// one holds a single value.
func NewValues(limit int) *Values {
	if limit < 1 {
		limit = 1
	}
	return &Values{limit: limit, seen: make(map[string]struct{})}
}

// Add records s unless it is empty, already seen, or the collector is full.
func (v *Values) Add(s string) {
	if s == "" || v.Full() {
		return
	}
	if _, ok := v.seen[s]; ok {
		return
	}
	v.seen[s] = struct{}{}
	v.list = append(v.list, s)
}

// Full reports whether the limit has been reached.
func (v *Values) Full() bool {
	return len(v.list) >= v.limit
}

// List returns the collected values.
func (v *Values) List() []string {
	return v.list
}

// ResolveURL resolves ref against base. Fragment-only references and
// non-navigable schemes such as javascript: and mailto: are returned
// unchanged, as is anything that fails to parse.
func ResolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil || ref == "" || strings.HasPrefix(ref, "#") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
	default:
		return ref
	}
	return base.ResolveReference(u).String()
}
