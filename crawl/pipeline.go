// Package crawl runs article conversion over many URLs. It coordinates
// fetching, template extraction with alternate parsers, and page output.
package crawl

import (
	"context"
	"strings"

	"github.com/fwojciec/webclip"
)

// Fallback is an alternate parser tried when the template engine rejects
// a page.
type Fallback struct {
	Name      string
	Extractor webclip.Extractor
}

// Pipeline converts one page of HTML into a webclip.Page.
type Pipeline struct {
	Engine    webclip.ArticleExtractor
	Fallbacks []Fallback

	// Converter renders fallback content. The engine formats its own output.
	Converter webclip.Converter
}

// Convert runs the engine and returns its page unless the quality gate
// failed. On failure each fallback is tried in order; the first one that
// yields content wins. When every parser comes up empty the engine's
// rejection is returned, carrying its FailCode.
func (p *Pipeline) Convert(ctx context.Context, html, pageURL string) (*webclip.Page, error) {
	res, err := p.Engine.Extract(ctx, html, pageURL)
	if err != nil {
		return nil, err
	}
	if res.Verdict != webclip.VerdictFail {
		return &webclip.Page{
			URL:      pageURL,
			Title:    res.Title,
			Date:     res.Date,
			Markdown: res.Markdown,
			Parser:   "template:" + res.Template,
			Metadata: res.Metadata,
			Warnings: res.Warnings,
		}, nil
	}

	for _, fb := range p.Fallbacks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, ok := p.tryFallback(fb, html, pageURL, res)
		if ok {
			return page, nil
		}
	}
	return nil, res.Err()
}

func (p *Pipeline) tryFallback(fb Fallback, html, pageURL string, res *webclip.Result) (*webclip.Page, bool) {
	if p.Converter == nil {
		return nil, false
	}
	ex, err := fb.Extractor.Extract(html, pageURL)
	if err != nil || strings.TrimSpace(ex.ContentHTML) == "" {
		return nil, false
	}
	md, err := p.Converter.Convert(ex.ContentHTML)
	if err != nil || strings.TrimSpace(md) == "" {
		return nil, false
	}

	title := ex.Title
	if title == "" {
		title = res.Title
	}
	return &webclip.Page{
		URL:      pageURL,
		Title:    title,
		Date:     ex.Date,
		Markdown: fallbackHeader(title, ex.Author, ex.Date, pageURL) + strings.TrimSpace(md) + "\n",
		Parser:   fb.Name,
		Warnings: []string{"template " + res.Template + " rejected page: " + strings.Join(res.Reasons, "; ")},
	}, true
}

// fallbackHeader mirrors the engine's default header, omitting empty lines.
func fallbackHeader(title, author, date, source string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("# " + title + "\n\n")
	}
	if author != "" {
		b.WriteString("**Author:** " + author + "\n")
	}
	if date != "" {
		b.WriteString("**Date:** " + date + "\n")
	}
	b.WriteString("**Source:** " + source + "\n\n---\n\n")
	return b.String()
}
