package webclip

import (
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TemplateStore indexes validated templates by domain. A store is immutable
// after construction and safe for concurrent use without locking.
type TemplateStore struct {
	generic  *Template
	byName   map[string]*Template
	exact    map[string][]*Template
	wildcard []*Template
}

// NewTemplateStore builds a store from validated templates. Templates are
// indexed in the order given; a later template with the same name replaces
// an earlier one. Returns EINTERNAL if no generic template is present.
func NewTemplateStore(templates []*Template) (*TemplateStore, error) {
	s := &TemplateStore{
		byName: make(map[string]*Template, len(templates)),
		exact:  make(map[string][]*Template),
	}
	for _, t := range templates {
		s.byName[t.Name] = t
	}

	generic, ok := s.byName[GenericTemplateName]
	if !ok {
		return nil, Errorf(EINTERNAL, "generic template not loaded")
	}
	s.generic = generic

	for _, t := range s.byName {
		if t.IsGeneric() {
			continue
		}
		hasWildcard := false
		for _, d := range t.Domains {
			d = NormalizeHost(d)
			if isWildcard(d) {
				hasWildcard = true
				continue
			}
			s.exact[d] = append(s.exact[d], t)
		}
		if hasWildcard {
			s.wildcard = append(s.wildcard, t)
		}
	}
	for host := range s.exact {
		sortByPriority(s.exact[host])
	}
	sortByPriority(s.wildcard)

	return s, nil
}

// TemplateForURL returns the best template for rawURL. It never returns nil:
// exact host matches win over wildcard matches, wildcard matches are ordered
// by specificity then priority, and the generic template is the final
// fallback.
func (s *TemplateStore) TemplateForURL(rawURL string) *Template {
	host := hostOf(rawURL)
	if host == "" {
		return s.generic
	}

	if matches := s.exact[host]; len(matches) > 0 {
		return matches[0]
	}

	var (
		best        *Template
		bestSpecial = -1
	)
	for _, t := range s.wildcard {
		for _, d := range t.Domains {
			d = NormalizeHost(d)
			if !isWildcard(d) || !matchDomain(d, host) {
				continue
			}
			spec := specificity(d)
			if spec > bestSpecial || (spec == bestSpecial && outranks(t, best)) {
				best, bestSpecial = t, spec
			}
		}
	}
	if best != nil {
		return best
	}

	return s.generic
}

// TemplateByName returns the named template.
// Returns ENOTFOUND if no template has that name.
func (s *TemplateStore) TemplateByName(name string) (*Template, error) {
	t, ok := s.byName[name]
	if !ok {
		return nil, Errorf(ENOTFOUND, "template %q not found", name)
	}
	return t, nil
}

// Generic returns the universal fallback template.
func (s *TemplateStore) Generic() *Template {
	return s.generic
}

// Templates returns all templates sorted by name.
func (s *TemplateStore) Templates() []*Template {
	all := make([]*Template, 0, len(s.byName))
	for _, t := range s.byName {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// NormalizeHost lowercases a host, drops any port and strips a leading "www.".
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return NormalizeHost(u.Host)
}

func isWildcard(domain string) bool {
	return strings.ContainsAny(domain, "*?[")
}

func matchDomain(pattern, host string) bool {
	if pattern == WildcardDomain {
		return true
	}
	ok, err := doublestar.Match(pattern, host)
	return err == nil && ok
}

// specificity counts the literal characters of a domain pattern.
func specificity(pattern string) int {
	n := 0
	for _, r := range pattern {
		switch r {
		case '*', '?':
		default:
			n++
		}
	}
	return n
}

// outranks reports whether a should be preferred over b at equal specificity.
func outranks(a, b *Template) bool {
	if b == nil {
		return true
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.Name < b.Name
}

func sortByPriority(ts []*Template) {
	sort.SliceStable(ts, func(i, j int) bool { return outranks(ts[i], ts[j]) })
}
