package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/crawl"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	filter, err := c.urlFilter()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	urls, err := c.collectURLs(deps, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	if len(urls) == 0 {
		err := webclip.Errorf(webclip.EINVALID, "no URLs to convert")
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	if c.Preview {
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	pipeline, err := deps.pipeline("", c.NoFallback)
	if err != nil {
		return err
	}
	batch := &crawl.Batch{
		Fetcher:     deps.Fetcher,
		Pipeline:    pipeline,
		Writer:      deps.NewWriter(c.Out),
		RateLimiter: crawl.NewDomainLimiter(c.RPS),
		Concurrency: c.Concurrency,
		RetryDelays: deps.RetryDelays,
		Logger:      deps.retryLogger(),
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", event.Total)
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s → %s\n", event.Completed, event.Total, crawl.DisplayURL(event.URL, 60), event.Path)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", event.URL, errorText(event.Error))
		}
	}

	result, err := batch.Run(deps.Ctx, urls, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "  %s\n", result.Summary())
	return nil
}

func (c *BatchCmd) urlFilter() (*webclip.URLFilter, error) {
	if len(c.Include) == 0 && len(c.Exclude) == 0 {
		return nil, nil
	}
	filter := &webclip.URLFilter{}
	for _, pattern := range c.Include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, pattern := range c.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}

// collectURLs gathers arguments, input file lines, sitemap entries and
// index page links, in that order, keeping those that pass filter.
func (c *BatchCmd) collectURLs(deps *Dependencies, filter *webclip.URLFilter) ([]string, error) {
	candidates := append([]string(nil), c.URLs...)

	if c.Input != "" {
		lines, err := readURLFile(c.Input)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, lines...)
	}

	var urls []string
	for _, u := range candidates {
		if filter.Match(u) {
			urls = append(urls, u)
		}
	}

	if c.Sitemap != "" {
		found, err := deps.Sitemaps.SitemapURLs(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}

	if c.LinksFrom != "" {
		resp, err := crawl.FetchWithRetryDelays(deps.Ctx, c.LinksFrom, deps.Fetcher.Fetch, deps.retryLogger(), deps.RetryDelays)
		if err != nil {
			return nil, err
		}
		indexURL := resp.URL
		if indexURL == "" {
			indexURL = c.LinksFrom
		}
		links, err := deps.Links.Links(resp.HTML, indexURL, c.LinkSel)
		if err != nil {
			return nil, err
		}
		for _, u := range links {
			if filter.Match(u) {
				urls = append(urls, u)
			}
		}
	}
	return urls, nil
}

// readURLFile returns the non-blank lines of path, skipping # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
