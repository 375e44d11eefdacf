package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/crawl"
	"github.com/fwojciec/webclip/engine"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Store *webclip.TemplateStore

	// Engine serves --template; Extractor is the engine as commands should
	// call it, possibly wrapped with logging.
	Engine    *engine.Engine
	Extractor webclip.ArticleExtractor

	Fallbacks []crawl.Fallback
	Converter webclip.Converter
	Fetcher   webclip.Fetcher
	Sitemaps  webclip.SitemapService
	Links     webclip.LinkExtractor
	NewWriter func(dir string) webclip.PageWriter

	// TemplateDir is the extra template directory, if any.
	TemplateDir string

	// Debug wraps extractors built per command with logging, as Extractor
	// already is.
	Debug bool

	RetryDelays []time.Duration
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	TemplateDir string `name:"templates" env:"WEBCLIP_TEMPLATES" placeholder:"DIR" help:"Extra template directory layered over the built-ins"`
	Debug       bool   `help:"Log fetches and extractions to stderr"`

	Get       GetCmd       `cmd:"" help:"Fetch a page and convert it to Markdown"`
	Convert   ConvertCmd   `cmd:"" help:"Convert a saved HTML file to Markdown"`
	Batch     BatchCmd     `cmd:"" help:"Convert many pages into a directory"`
	Templates TemplatesCmd `cmd:"" help:"Inspect extraction templates"`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	URL        string        `arg:"" help:"Page URL"`
	Backend    string        `short:"b" enum:"http,rod" default:"http" help:"Fetch backend (http, rod)"`
	Output     string        `short:"o" type:"path" placeholder:"FILE" help:"Write to FILE instead of stdout"`
	JSON       bool          `name:"json" help:"Print the page as JSON"`
	NoFallback bool          `help:"Do not try alternate parsers when the template rejects the page"`
	Template   string        `short:"t" placeholder:"NAME" help:"Use the named template instead of matching by domain"`
	Timeout    time.Duration `default:"30s" help:"Fetch timeout"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	File       string `arg:"" type:"existingfile" help:"HTML file"`
	URL        string `short:"u" required:"" help:"URL the page was served from"`
	Output     string `short:"o" type:"path" placeholder:"FILE" help:"Write to FILE instead of stdout"`
	JSON       bool   `name:"json" help:"Print the page as JSON"`
	NoFallback bool   `help:"Do not try alternate parsers when the template rejects the page"`
	Template   string `short:"t" placeholder:"NAME" help:"Use the named template instead of matching by domain"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	URLs        []string      `arg:"" optional:"" help:"Page URLs"`
	Input       string        `short:"i" type:"existingfile" placeholder:"FILE" help:"Read URLs from FILE, one per line"`
	Sitemap     string        `short:"s" placeholder:"URL" help:"Read URLs from a sitemap or a site's robots.txt"`
	LinksFrom   string        `placeholder:"URL" help:"Read article links from an index page"`
	LinkSel     string        `name:"link-selector" placeholder:"CSS" help:"Limit --links-from to links inside matching elements"`
	Include     []string      `short:"I" placeholder:"REGEX" help:"Keep only URLs matching regex (repeatable)"`
	Exclude     []string      `short:"X" placeholder:"REGEX" help:"Drop URLs matching regex (repeatable)"`
	Out         string        `short:"o" required:"" type:"path" placeholder:"DIR" help:"Output directory"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent page limit"`
	RPS         float64       `name:"rps" default:"1" help:"Requests per second per host (0 disables limiting)"`
	Backend     string        `short:"b" enum:"http,rod" default:"http" help:"Fetch backend (http, rod)"`
	NoFallback  bool          `help:"Do not try alternate parsers when the template rejects a page"`
	Preview     bool          `short:"p" help:"List URLs without fetching"`
	Timeout     time.Duration `default:"30s" help:"Per-page fetch timeout"`
}

// TemplatesCmd groups the template inspection subcommands.
type TemplatesCmd struct {
	List  TemplatesListCmd  `cmd:"" help:"List loaded templates"`
	Match TemplatesMatchCmd `cmd:"" help:"Show which template a URL selects"`
	Check TemplatesCheckCmd `cmd:"" help:"Validate template files"`
}

// TemplatesListCmd is the "templates list" subcommand.
type TemplatesListCmd struct{}

// TemplatesMatchCmd is the "templates match" subcommand.
type TemplatesMatchCmd struct {
	URL string `arg:"" help:"Page URL"`
}

// TemplatesCheckCmd is the "templates check" subcommand.
type TemplatesCheckCmd struct {
	Dir string `arg:"" optional:"" type:"existingdir" help:"Template directory (default: built-ins and --templates)"`
}
