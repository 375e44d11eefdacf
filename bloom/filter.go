// Package bloom provides probabilistic URL de-duplication for batch runs.
package bloom

import (
	"net/url"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/webclip"
)

// URLSet records URLs already scheduled. It is safe for concurrent use.
// False positives are possible at the configured rate; false negatives are
// not, so a URL is never processed twice.
type URLSet struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewURLSet creates a set sized for n expected URLs with the given false
// positive rate.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{f: bloom.NewWithEstimates(n, fpRate)}
}

// Add records rawURL and reports whether it was new. URLs that differ only
// by fragment, host case, a "www." prefix or a trailing slash are the same.
func (s *URLSet) Add(rawURL string) bool {
	key := Canonical(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.f.TestAndAddString(key)
}

// Contains reports whether rawURL might have been added.
func (s *URLSet) Contains(rawURL string) bool {
	key := Canonical(rawURL)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.TestString(key)
}

// Len returns the approximate number of URLs added.
func (s *URLSet) Len() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}

// Canonical returns the de-duplication key for rawURL. Unparseable input is
// returned trimmed.
func Canonical(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = webclip.NormalizeHost(u.Host)
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}
