package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements webclip.Extractor at compile time.
var _ webclip.Extractor = (*trafilatura.Extractor)(nil)

const postURL = "https://blog.example.com/2025/10/sample-post"

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Sample Post | Example Blog</title>
<meta property="og:title" content="Sample Post">
</head>
<body>
<nav>Navigation here</nav>
<article>
<h1>Sample Post</h1>
<p>This is the opening paragraph of a blog post about extraction.</p>
</article>
<footer>Footer content</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html, postURL)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts article body", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/">Home</a><a href="/archive">Archive</a></nav>
<article>
<h1>Why We Moved to Postgres</h1>
<p>This is the substantive part of the post that should be extracted for readers.</p>
<p>It spans more than one paragraph so the heuristics have something to score.</p>
</article>
<aside>Related posts</aside>
<footer>Copyright 2025</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html, postURL)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "substantive part of the post")
		assert.NotContains(t, result.ContentHTML, "Copyright 2025")
	})

	t.Run("removes navigation boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/about">About</a></li>
</ul>
</nav>
<main>
<h1>Main Content</h1>
<p>This paragraph contains the actual content we want.</p>
</main>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html, postURL)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "actual content we want")
		assert.NotContains(t, result.ContentHTML, "main-nav")
	})

	t.Run("reads author and publish date", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Dated Post</title>
<meta name="author" content="Sample Author">
<meta property="article:published_time" content="2025-10-09T08:00:00Z">
</head>
<body>
<article>
<h1>Dated Post</h1>
<p>A post with a byline and a publish date in its metadata, written for the test.</p>
</article>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html, postURL)

		require.NoError(t, err)
		assert.Equal(t, "Sample Author", result.Author)
		assert.Equal(t, "2025-10-09", result.Date)
	})

	t.Run("accepts an unparseable page URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>Simple content</p></body></html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html, "::not a url")

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Simple content")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract("  ", postURL)

		require.Error(t, err)
		assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
	})
}
