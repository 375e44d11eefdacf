package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "simple path",
			url:  "https://blog.example.com/posts/2025/hello",
			want: "blog.example.com/posts/2025/hello.md",
		},
		{
			name: "trailing slash becomes index",
			url:  "https://blog.example.com/posts/",
			want: "blog.example.com/posts/index.md",
		},
		{
			name: "root path becomes index",
			url:  "https://blog.example.com/",
			want: "blog.example.com/index.md",
		},
		{
			name: "root without trailing slash",
			url:  "https://blog.example.com",
			want: "blog.example.com/index.md",
		},
		{
			name: "ignores query string and fragment",
			url:  "https://blog.example.com/posts/hello?utm_source=feed#comments",
			want: "blog.example.com/posts/hello.md",
		},
		{
			name: "normalizes host",
			url:  "https://WWW.Example.com:8443/story",
			want: "example.com/story.md",
		},
		{
			name: "replaces html extension",
			url:  "https://news.example.org/2025/10/story.html",
			want: "news.example.org/2025/10/story.md",
		},
		{
			name: "dot segments stay under host",
			url:  "https://blog.example.com/../../etc/passwd",
			want: "blog.example.com/etc/passwd.md",
		},
		{
			name:    "missing host",
			url:     "/posts/hello",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPage(t *testing.T) {
	t.Parallel()

	clipped := time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)

	t.Run("prefixes frontmatter", func(t *testing.T) {
		t.Parallel()

		page := &webclip.Page{
			URL:      "https://blog.example.com/posts/hello",
			Title:    "Hello World",
			Date:     "2025-10-01",
			Parser:   "template:generic",
			Markdown: "# Hello World\n\nBody.\n",
		}

		got, err := fs.FormatPage(page, clipped)

		require.NoError(t, err)
		want := `---
title: Hello World
source: https://blog.example.com/posts/hello
date: "2025-10-01"
parser: template:generic
clipped: "2025-10-09"
---

# Hello World

Body.
`
		assert.Equal(t, want, got)
	})

	t.Run("quotes titles that need it", func(t *testing.T) {
		t.Parallel()

		page := &webclip.Page{
			URL:      "https://blog.example.com/a",
			Title:    "Go: a retrospective",
			Markdown: "Body",
		}

		got, err := fs.FormatPage(page, clipped)

		require.NoError(t, err)
		assert.Contains(t, got, "title: 'Go: a retrospective'\n")
		assert.NotContains(t, got, "date:")
	})

	t.Run("keeps existing frontmatter", func(t *testing.T) {
		t.Parallel()

		page := &webclip.Page{
			URL:      "https://blog.example.com/a",
			Title:    "Ignored",
			Markdown: "---\ntitle: From Engine\n---\n\nBody\n",
		}

		got, err := fs.FormatPage(page, clipped)

		require.NoError(t, err)
		assert.Equal(t, page.Markdown, got)
	})
}

func TestWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ webclip.PageWriter = &fs.Writer{}
}

func TestWriter_WritePage(t *testing.T) {
	t.Parallel()

	t.Run("writes page under host directory", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir)
		w.Now = func() time.Time { return time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC) }

		page := &webclip.Page{
			URL:      "https://blog.example.com/posts/hello",
			Title:    "Hello",
			Parser:   "readability",
			Markdown: "# Hello\n",
		}

		path, err := w.WritePage(context.Background(), page)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, "blog.example.com", "posts", "hello.md"), path)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		want := `---
title: Hello
source: https://blog.example.com/posts/hello
parser: readability
clipped: "2025-10-09"
---

# Hello
`
		assert.Equal(t, want, string(content))
	})

	t.Run("trailing slash creates index.md", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir)

		path, err := w.WritePage(context.Background(), &webclip.Page{
			URL:      "https://blog.example.com/posts/",
			Markdown: "Index",
		})

		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(baseDir, "blog.example.com", "posts", "index.md"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, "blog.example.com", "posts", "index.md"), path)
	})

	t.Run("rejects empty page", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())

		_, err := w.WritePage(context.Background(), &webclip.Page{URL: "https://blog.example.com/a"})

		assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
	})

	t.Run("rejects URL without host", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())

		_, err := w.WritePage(context.Background(), &webclip.Page{URL: "relative/path", Markdown: "x"})

		assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
	})
}
