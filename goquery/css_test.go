package goquery_test

import (
	"testing"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cssPage = `<!DOCTYPE html>
<html>
<head>
<title>Hello World - Example Blog</title>
<meta property="og:title" content="  Hello World  ">
</head>
<body>
<h1>
	Hello
	World
</h1>
<article><p>One</p><p>Two</p></article>
<div class="ads">Sponsored</div>
<div class="gallery">
	<img src="/a.png"><img src="/b.png"><img src="/a.png"><img src="/c.png">
</div>
<span class="id">Post id=123</span>
</body>
</html>`

func TestCSSEvaluator_Evaluate(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, cssPage, webclip.ExcludePatterns{Classes: []string{"ads"}})
	e := goquery.NewCSSEvaluator()

	t.Run("reads an attribute", func(t *testing.T) {
		t.Parallel()

		got, err := e.Evaluate(doc, webclip.SelectorRule{Selector: `meta[property="og:title"]`, Strategy: webclip.StrategyCSS, Attribute: "content"}, webclip.EvalOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Hello World"}, got)
	})

	t.Run("normalizes text", func(t *testing.T) {
		t.Parallel()

		got, err := e.Evaluate(doc, webclip.SelectorRule{Selector: "h1", Strategy: webclip.StrategyCSS}, webclip.EvalOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"Hello World"}, got)
	})

	t.Run("returns inner HTML for content", func(t *testing.T) {
		t.Parallel()

		got, err := e.Evaluate(doc, webclip.SelectorRule{Selector: "article", Strategy: webclip.StrategyCSS}, webclip.EvalOptions{Kind: webclip.KindHTML})

		require.NoError(t, err)
		assert.Equal(t, []string{"<p>One</p><p>Two</p>"}, got)
	})

	t.Run("collects distinct list values up to the limit", func(t *testing.T) {
		t.Parallel()

		got, err := e.Evaluate(doc, webclip.SelectorRule{Selector: ".gallery img", Strategy: webclip.StrategyCSS, Attribute: "src"}, webclip.EvalOptions{Kind: webclip.KindList, Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, []string{"/a.png", "/b.png"}, got)
	})

	t.Run("keeps capture group 1 of the pattern", func(t *testing.T) {
		t.Parallel()

		got, err := e.Evaluate(doc, webclip.SelectorRule{Selector: "span.id", Strategy: webclip.StrategyCSS, Pattern: `id=(\d+)`}, webclip.EvalOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"123"}, got)
	})

	t.Run("does not see pruned elements", func(t *testing.T) {
		t.Parallel()

		got, err := e.Evaluate(doc, webclip.SelectorRule{Selector: ".ads", Strategy: webclip.StrategyCSS}, webclip.EvalOptions{})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("reports malformed selectors", func(t *testing.T) {
		t.Parallel()

		_, err := e.Evaluate(doc, webclip.SelectorRule{ID: "t/title/0", Selector: "div[", Strategy: webclip.StrategyCSS}, webclip.EvalOptions{})

		require.Error(t, err)
		assert.Equal(t, webclip.ESELECTOR, webclip.ErrorCode(err))
	})

	t.Run("reports malformed patterns", func(t *testing.T) {
		t.Parallel()

		_, err := e.Evaluate(doc, webclip.SelectorRule{Selector: "h1", Strategy: webclip.StrategyCSS, Pattern: "(["}, webclip.EvalOptions{})

		require.Error(t, err)
		assert.Equal(t, webclip.ESELECTOR, webclip.ErrorCode(err))
	})
}
