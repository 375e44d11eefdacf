// Package engine turns (HTML, URL) pairs into structured articles and
// Markdown using the templates in a webclip.TemplateStore.
//
// An Engine holds no mutable state. Every call owns its Document and
// Result, so one Engine may serve any number of concurrent callers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/bluemonday"
	"github.com/fwojciec/webclip/gojson"
	"github.com/fwojciec/webclip/goquery"
	"github.com/fwojciec/webclip/htmlquery"
	"github.com/fwojciec/webclip/htmltomarkdown"
)

var _ webclip.ArticleExtractor = (*Engine)(nil)

// Engine is the template-driven extraction engine.
type Engine struct {
	store *webclip.TemplateStore

	parser      webclip.DocumentParser
	css         webclip.Evaluator
	xpath       webclip.Evaluator
	textPattern webclip.Evaluator
	cms         webclip.CMSDetector
	transforms  map[string]webclip.Transform
	converter   webclip.Converter
}

// Option configures an Engine.
type Option func(*Engine)

// WithParser replaces the document parser.
func WithParser(p webclip.DocumentParser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithEvaluator replaces the evaluator for strategy s.
func WithEvaluator(s webclip.Strategy, ev webclip.Evaluator) Option {
	return func(e *Engine) {
		switch s {
		case webclip.StrategyCSS:
			e.css = ev
		case webclip.StrategyXPath:
			e.xpath = ev
		case webclip.StrategyTextPattern:
			e.textPattern = ev
		}
	}
}

// WithCMSDetector replaces the CMS detector. A nil detector disables CMS
// overrides.
func WithCMSDetector(d webclip.CMSDetector) Option {
	return func(e *Engine) {
		e.cms = d
	}
}

// WithTransform registers t under its name, replacing any transform with
// the same name.
func WithTransform(t webclip.Transform) Option {
	return func(e *Engine) {
		e.transforms[t.Name()] = t
	}
}

// WithConverter replaces the Markdown converter.
func WithConverter(c webclip.Converter) Option {
	return func(e *Engine) {
		e.converter = c
	}
}

// DefaultTransforms returns every named content transform.
func DefaultTransforms() []webclip.Transform {
	return append(goquery.Transforms(), bluemonday.NewCleaner())
}

// New creates an Engine reading templates from store.
func New(store *webclip.TemplateStore, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		parser:      goquery.NewParser(),
		css:         goquery.NewCSSEvaluator(),
		xpath:       htmlquery.NewEvaluator(),
		textPattern: gojson.NewEvaluator(),
		cms:         goquery.NewDefaultCMSRegistry(),
		transforms:  make(map[string]webclip.Transform),
		converter:   htmltomarkdown.NewConverter(),
	}
	for _, t := range DefaultTransforms() {
		e.transforms[t.Name()] = t
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// evaluator dispatches on the closed strategy set.
func (e *Engine) evaluator(s webclip.Strategy) webclip.Evaluator {
	switch s {
	case webclip.StrategyCSS:
		return e.css
	case webclip.StrategyXPath:
		return e.xpath
	case webclip.StrategyTextPattern:
		return e.textPattern
	}
	return nil
}

// Extract runs the full pipeline for one page.
//
// A page the template rejects, including one that exceeds the template's
// size or time bound, is reported through Result.Verdict with a FailCode of
// EQUALITY, ETOOLARGE or ETIMEOUT. The error is reserved for an invalid URL
// and for cancellation of ctx.
func (e *Engine) Extract(ctx context.Context, rawHTML, pageURL string) (*webclip.Result, error) {
	return e.ExtractWithTemplate(ctx, e.store.TemplateForURL(pageURL), rawHTML, pageURL)
}

// ExtractWithTemplate is Extract with the template chosen by the caller
// rather than by the store's domain match.
func (e *Engine) ExtractWithTemplate(ctx context.Context, tmpl *webclip.Template, rawHTML, pageURL string) (*webclip.Result, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, webclip.Errorf(webclip.EINVALID, "invalid page URL %q: %v", pageURL, err)
	}

	res := &webclip.Result{
		URL:      pageURL,
		Template: tmpl.Name,
		Fields:   make(map[string]webclip.FieldResult),
		Metadata: make(map[string]string),
	}

	if limit := tmpl.Performance.MaxDocumentSize; limit > 0 && len(rawHTML) > limit {
		res.Fail(webclip.ETOOLARGE, fmt.Sprintf("document is %d bytes, limit is %d", len(rawHTML), limit))
		return res, nil
	}

	runCtx := ctx
	if d := tmpl.Performance.MaxExtractionTime; d > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if err := e.run(runCtx, tmpl, u, rawHTML, res); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			res.Fail(webclip.ETIMEOUT, fmt.Sprintf("extraction exceeded %s", tmpl.Performance.MaxExtractionTime))
			return res, nil
		}
		return nil, err
	}
	return res, nil
}

// ExtractMarkdown is the compact call contract: it returns the primary date
// (empty when unresolved), the Markdown and the surfaced metadata. A
// rejected page returns an error carrying EQUALITY, ETIMEOUT or ETOOLARGE
// so the caller can switch to an alternate parser.
func (e *Engine) ExtractMarkdown(rawHTML, pageURL string) (date, markdown string, metadata map[string]string, err error) {
	res, err := e.Extract(context.Background(), rawHTML, pageURL)
	if err != nil {
		return "", "", nil, err
	}
	if err := res.Err(); err != nil {
		return "", "", nil, err
	}
	return res.Date, res.Markdown, res.Metadata, nil
}

func (e *Engine) run(ctx context.Context, tmpl *webclip.Template, u *url.URL, rawHTML string, res *webclip.Result) error {
	doc, err := e.parser.Parse(rawHTML, u, tmpl.Exclude)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var overlay *webclip.CMSOverlay
	if e.cms != nil {
		if overlay = e.cms.Detect(doc); overlay != nil {
			res.CMS = overlay.CMS
		}
	}

	r := &resolver{evaluator: e.evaluator, doc: doc, policy: tmpl.Strategies, res: res}
	for _, field := range webclip.PrimaryFields {
		fr, err := r.resolve(ctx, string(field), fieldRules(tmpl, overlay, field), webclip.KindOf(string(field)))
		if err != nil {
			return err
		}
		if !fr.Resolved() {
			continue
		}
		res.Fields[string(field)] = fr
		switch field {
		case webclip.FieldTitle:
			res.Title = stripTitleSuffix(fr.Value, tmpl.TitleSeparators)
		case webclip.FieldContent:
			res.ContentHTML = fr.Value
		case webclip.FieldAuthor:
			res.Author = fr.Value
		case webclip.FieldDate:
			res.Date = fr.Value
		case webclip.FieldCover:
			res.Cover = fr.Value
		case webclip.FieldImages:
			res.Images = fr.Values
		}
	}

	content, err := e.postProcess(ctx, tmpl.PostProcess, res.ContentHTML, u, res)
	if err != nil {
		return err
	}
	res.ContentHTML = content
	res.Text = goquery.PlainText(content)

	truncateTitle(tmpl.Quality, res)

	values, err := assembleMetadata(ctx, r, tmpl, res)
	if err != nil {
		return err
	}

	assess(tmpl.Quality, res)
	if res.Verdict == webclip.VerdictFail {
		return nil
	}

	md, err := e.format(tmpl.Output, values, res)
	if err != nil {
		res.Fail(webclip.EINTERNAL, webclip.ErrorMessage(err))
		return nil
	}
	res.Markdown = md
	return nil
}

// postProcess applies the named transforms in order. A failing transform is
// skipped with a warning and the content it received is kept.
func (e *Engine) postProcess(ctx context.Context, names []string, content string, u *url.URL, res *webclip.Result) (string, error) {
	if content == "" {
		return "", nil
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		t, ok := e.transforms[name]
		if !ok {
			res.Warn(fmt.Sprintf("post-process: transform %q is not registered", name))
			continue
		}
		out, err := t.Apply(content, u)
		if err != nil {
			res.Warn(fmt.Sprintf("post-process: %s: %s", name, webclip.ErrorMessage(err)))
			continue
		}
		content = out
	}
	return content, nil
}
