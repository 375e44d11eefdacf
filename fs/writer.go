// Package fs writes converted pages as Markdown files.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/webclip"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a page URL to a relative file path under its host.
// Example: https://www.example.com/posts/hello → example.com/posts/hello.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webclip.Errorf(webclip.EINVALID, "invalid URL %q", rawURL)
	}
	host := webclip.NormalizeHost(u.Host)
	if host == "" {
		return "", webclip.Errorf(webclip.EINVALID, "URL %q has no host", rawURL)
	}

	p := u.Path

	// Handle root or trailing slash → index.md
	if p == "" || p == "/" {
		return path.Join(host, "index.md"), nil
	}

	// Clean before joining so ".." segments cannot climb out of the host directory.
	trailing := strings.HasSuffix(p, "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return path.Join(host, "index.md"), nil
	}
	if trailing {
		return path.Join(host, p, "index.md"), nil
	}
	return path.Join(host, strings.TrimSuffix(p, ".html")+".md"), nil
}

type frontmatter struct {
	Title   string `yaml:"title,omitempty"`
	Source  string `yaml:"source"`
	Date    string `yaml:"date,omitempty"`
	Parser  string `yaml:"parser,omitempty"`
	Clipped string `yaml:"clipped"`
}

// FormatPage prefixes the page with YAML frontmatter. Markdown that already
// opens with a frontmatter block is returned unchanged.
func FormatPage(page *webclip.Page, clipped time.Time) (string, error) {
	if strings.HasPrefix(page.Markdown, "---\n") {
		return page.Markdown, nil
	}

	fm, err := yaml.Marshal(frontmatter{
		Title:   page.Title,
		Source:  page.URL,
		Date:    page.Date,
		Parser:  page.Parser,
		Clipped: clipped.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(page.Markdown)
	return b.String(), nil
}

// Ensure Writer implements webclip.PageWriter at compile time.
var _ webclip.PageWriter = (*Writer)(nil)

// Writer writes pages as markdown files to a directory.
type Writer struct {
	baseDir string

	// Now returns the clip time recorded in frontmatter.
	Now func() time.Time
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, Now: time.Now}
}

// WritePage writes the page to disk and returns the file path.
func (w *Writer) WritePage(ctx context.Context, page *webclip.Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page.Markdown == "" {
		return "", webclip.Errorf(webclip.EINVALID, "page %s has no content", page.URL)
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(w.baseDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	content, err := FormatPage(page, w.Now())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}
