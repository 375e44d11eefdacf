package main

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/crawl"
	"github.com/fwojciec/webclip/engine"
	"github.com/fwojciec/webclip/fs"
	"github.com/fwojciec/webclip/goquery"
	"github.com/fwojciec/webclip/htmltomarkdown"
	webcliphttp "github.com/fwojciec/webclip/http"
	"github.com/fwojciec/webclip/readability"
	"github.com/fwojciec/webclip/rod"
	webclipslog "github.com/fwojciec/webclip/slog"
	"github.com/fwojciec/webclip/trafilatura"
	"github.com/fwojciec/webclip/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// NewFetcher creates the fetch backend. Set before calling Run() to
	// substitute a fetcher in end-to-end tests.
	NewFetcher func(backend string, timeout time.Duration) (webclip.Fetcher, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{NewFetcher: newFetcher}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webclip"),
		kong.Description("Convert web articles to Markdown using site templates"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webclip --help' to see available commands")
	}
	if len(args) == 1 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()

	level := slog.LevelWarn
	if cli.Debug {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.TemplateDir = cli.TemplateDir
	deps.RetryDelays = crawl.DefaultRetryDelays()

	// "templates check" reports broken files itself instead of failing to load.
	if strings.HasPrefix(cmd, "templates check") {
		return kongCtx.Run(deps)
	}

	var dirs []iofs.FS
	if cli.TemplateDir != "" {
		dirs = append(dirs, os.DirFS(cli.TemplateDir))
	}
	deps.Store, err = yaml.NewStore(deps.Logger, dirs...)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set WEBCLIP_TEMPLATES to a directory containing a valid generic template, or unset it")
		return fmt.Errorf("failed to load templates: %w", err)
	}

	deps.Engine = engine.New(deps.Store)
	deps.Debug = cli.Debug
	deps.Extractor = deps.logExtractor(deps.Engine)
	deps.Converter = htmltomarkdown.NewConverter()
	deps.Fallbacks = []crawl.Fallback{
		{Name: "trafilatura", Extractor: trafilatura.NewExtractor()},
		{Name: "readability", Extractor: readability.NewExtractor()},
	}
	deps.Sitemaps = webcliphttp.NewSitemapService(nil)
	deps.Links = goquery.NewLinkExtractor()
	deps.NewWriter = func(dir string) webclip.PageWriter { return fs.NewWriter(dir) }

	if cli.Debug {
		deps.Sitemaps = webclipslog.NewLoggingSitemapService(deps.Sitemaps, deps.Logger)
	}

	// Wire the fetcher only for commands that go to the network for pages.
	backend, timeout := "", time.Duration(0)
	switch {
	case strings.HasPrefix(cmd, "get"):
		backend, timeout = cli.Get.Backend, cli.Get.Timeout
	case strings.HasPrefix(cmd, "batch") && (!cli.Batch.Preview || cli.Batch.LinksFrom != ""):
		backend, timeout = cli.Batch.Backend, cli.Batch.Timeout
	}
	if backend != "" {
		fetcher, err := m.NewFetcher(backend, timeout)
		if err != nil {
			if backend == "rod" {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			}
			return fmt.Errorf("failed to start %s fetcher: %w", backend, err)
		}
		defer fetcher.Close()

		deps.Fetcher = fetcher
		if cli.Debug {
			deps.Fetcher = webclipslog.NewLoggingFetcher(fetcher, deps.Logger)
		}
	}

	return kongCtx.Run(deps)
}

func newFetcher(backend string, timeout time.Duration) (webclip.Fetcher, error) {
	if backend == "rod" {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(timeout))
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return webcliphttp.NewFetcher(webcliphttp.WithTimeout(timeout)), nil
}
