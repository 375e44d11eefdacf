package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/crawl"
	"github.com/fwojciec/webclip/engine"
	webclipslog "github.com/fwojciec/webclip/slog"
)

// clipOptions are the output flags shared by get and convert.
type clipOptions struct {
	Output     string
	JSON       bool
	NoFallback bool
	Template   string
}

// pageJSON is the --json output shape.
type pageJSON struct {
	URL      string            `json:"url"`
	Title    string            `json:"title"`
	Date     string            `json:"date,omitempty"`
	Parser   string            `json:"parser"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Markdown string            `json:"markdown"`
}

// templateExtractor runs the engine with a fixed template.
type templateExtractor struct {
	engine *engine.Engine
	tmpl   *webclip.Template
}

func (e *templateExtractor) Extract(ctx context.Context, html, pageURL string) (*webclip.Result, error) {
	return e.engine.ExtractWithTemplate(ctx, e.tmpl, html, pageURL)
}

// logExtractor wraps ex with logging when --debug is on.
func (deps *Dependencies) logExtractor(ex webclip.ArticleExtractor) webclip.ArticleExtractor {
	if !deps.Debug || deps.Logger == nil {
		return ex
	}
	return webclipslog.NewLoggingExtractor(ex, deps.Logger)
}

// pipeline builds the conversion pipeline the flags ask for.
func (deps *Dependencies) pipeline(templateName string, noFallback bool) (*crawl.Pipeline, error) {
	extractor := deps.Extractor
	if templateName != "" {
		tmpl, err := deps.Store.TemplateByName(templateName)
		if err != nil {
			return nil, err
		}
		extractor = deps.logExtractor(&templateExtractor{engine: deps.Engine, tmpl: tmpl})
	}

	p := &crawl.Pipeline{Engine: extractor, Converter: deps.Converter}
	if !noFallback {
		p.Fallbacks = deps.Fallbacks
	}
	return p, nil
}

// clip converts one page and writes it where opts say.
func clip(deps *Dependencies, html, pageURL string, opts clipOptions) error {
	p, err := deps.pipeline(opts.Template, opts.NoFallback)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	page, err := p.Convert(deps.Ctx, html, pageURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}
	for _, w := range page.Warnings {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", w)
	}

	out := []byte(page.Markdown)
	if opts.JSON {
		out, err = json.MarshalIndent(pageJSON{
			URL:      page.URL,
			Title:    page.Title,
			Date:     page.Date,
			Parser:   page.Parser,
			Metadata: page.Metadata,
			Warnings: page.Warnings,
			Markdown: page.Markdown,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		out = append(out, '\n')
	}

	if opts.Output == "" {
		_, err := deps.Stdout.Write(out)
		return err
	}

	if dir := filepath.Dir(opts.Output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(opts.Output, out, 0644); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Saved %s (%s, %s)\n", opts.Output, page.Parser, crawl.FormatBytes(len(out)))
	return nil
}

// retryLogger prints fetch retries to w.
func (deps *Dependencies) retryLogger() crawl.LogFunc {
	return func(format string, args ...any) {
		fmt.Fprintf(deps.Stderr, format+"\n", args...)
	}
}

// errorText returns an application error's message, or the full text of
// any other error.
func errorText(err error) string {
	var e *webclip.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
