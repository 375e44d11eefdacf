package main

import (
	"fmt"

	"github.com/fwojciec/webclip/crawl"
)

// Run executes the get command.
func (c *GetCmd) Run(deps *Dependencies) error {
	resp, err := crawl.FetchWithRetryDelays(deps.Ctx, c.URL, deps.Fetcher.Fetch, deps.retryLogger(), deps.RetryDelays)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: fetching %s: %s\n", c.URL, errorText(err))
		return err
	}

	pageURL := resp.URL
	if pageURL == "" {
		pageURL = c.URL
	}
	return clip(deps, resp.HTML, pageURL, clipOptions{
		Output:     c.Output,
		JSON:       c.JSON,
		NoFallback: c.NoFallback,
		Template:   c.Template,
	})
}
