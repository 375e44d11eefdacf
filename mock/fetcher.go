package mock

import (
	"context"

	"github.com/fwojciec/webclip"
)

var (
	_ webclip.Fetcher       = (*Fetcher)(nil)
	_ webclip.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of webclip.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*webclip.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*webclip.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

// DomainLimiter is a mock implementation of webclip.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
