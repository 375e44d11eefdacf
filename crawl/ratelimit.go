package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/webclip"
	"golang.org/x/time/rate"
)

var _ webclip.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces requests to the same host using token buckets.
// Hosts are normalized first, so www.example.com and example.com share
// a bucket.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// per host with no bursting. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the host's bucket has a token.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	host := webclip.NormalizeHost(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
