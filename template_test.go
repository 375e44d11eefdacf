package webclip_test

import (
	"testing"

	"github.com/fwojciec/webclip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *webclip.Template {
	t := &webclip.Template{
		Name:    "blog",
		Domains: []string{"blog.example.com"},
		Selectors: map[webclip.Field][]webclip.SelectorRule{
			webclip.FieldTitle: {
				{Selector: `meta[property="og:title"]`, Strategy: webclip.StrategyCSS, Attribute: "content"},
				{Selector: "h1", Strategy: webclip.StrategyCSS},
			},
			webclip.FieldAuthor: {
				{Selector: `script[type="application/ld+json"]`, Strategy: webclip.StrategyTextPattern, Path: "$.author.name"},
			},
		},
		PostProcess: []string{webclip.TransformRemoveScripts, webclip.TransformCleanHTML},
	}
	t.Normalize()
	return t
}

func TestTemplate_Normalize(t *testing.T) {
	t.Parallel()

	tmpl := validTemplate()

	assert.Equal(t, webclip.StrategyCSS, tmpl.Strategies.Primary)
	assert.Equal(t, []webclip.Strategy{webclip.StrategyTextPattern, webclip.StrategyXPath}, tmpl.Strategies.Fallback)
	assert.Equal(t, "blog/title/0", tmpl.Selectors[webclip.FieldTitle][0].ID)
	assert.Equal(t, "blog/title/1", tmpl.Selectors[webclip.FieldTitle][1].ID)
	assert.Equal(t, webclip.DefaultMaxDocumentSize, tmpl.Performance.MaxDocumentSize)
	assert.Equal(t, webclip.DefaultHeaderTemplate, tmpl.Output.HeaderTemplate)
}

func TestTemplate_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well-formed template", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, validTemplate().Validate())
	})

	t.Run("rejects a rule without strategy", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Selectors[webclip.FieldDate] = []webclip.SelectorRule{{Selector: "time"}}

		err := tmpl.Validate()

		require.Error(t, err)
		assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
		assert.Contains(t, webclip.ErrorMessage(err), "strategy required")
	})

	t.Run("rejects a meta rule without attribute", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Selectors[webclip.FieldDate] = []webclip.SelectorRule{
			{Selector: `meta[property="article:published_time"]`, Strategy: webclip.StrategyCSS},
		}

		err := tmpl.Validate()

		require.Error(t, err)
		assert.Contains(t, webclip.ErrorMessage(err), "requires attribute")
	})

	t.Run("rejects a meta rule with spaces in its attribute value", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Selectors[webclip.FieldAuthor] = []webclip.SelectorRule{
			{Selector: `meta[content*="by the editors"]`, Strategy: webclip.StrategyCSS},
		}

		err := tmpl.Validate()

		require.Error(t, err)
		assert.Contains(t, webclip.ErrorMessage(err), "requires attribute")
	})

	t.Run("rejects duplicate selectors within a field", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Selectors[webclip.FieldContent] = []webclip.SelectorRule{
			{Selector: "article", Strategy: webclip.StrategyCSS},
			{Selector: "article", Strategy: webclip.StrategyCSS},
		}

		err := tmpl.Validate()

		require.Error(t, err)
		assert.Contains(t, webclip.ErrorMessage(err), "duplicate selector")
	})

	t.Run("rejects a strategy outside the policy", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Strategies.Fallback = []webclip.Strategy{webclip.StrategyTextPattern}
		tmpl.Selectors[webclip.FieldContent] = []webclip.SelectorRule{
			{Selector: "//article", Strategy: webclip.StrategyXPath},
		}

		err := tmpl.Validate()

		require.Error(t, err)
		assert.Contains(t, webclip.ErrorMessage(err), "neither primary nor fallback")
	})

	t.Run("rejects unknown transforms", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.PostProcess = append(tmpl.PostProcess, "summarize")

		require.Error(t, tmpl.Validate())
	})

	t.Run("requires the wildcard domain on the generic template", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Name = webclip.GenericTemplateName

		require.Error(t, tmpl.Validate())

		tmpl.Domains = []string{webclip.WildcardDomain}
		require.NoError(t, tmpl.Validate())
	})

	t.Run("rejects text_pattern path without block selector", func(t *testing.T) {
		t.Parallel()

		tmpl := validTemplate()
		tmpl.Selectors[webclip.FieldDate] = []webclip.SelectorRule{
			{Strategy: webclip.StrategyTextPattern, Path: "$.datePublished"},
		}

		require.Error(t, tmpl.Validate())
	})
}

func TestTargetsMeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rule webclip.SelectorRule
		want bool
	}{
		{webclip.SelectorRule{Selector: `meta[name="author"]`, Strategy: webclip.StrategyCSS}, true},
		{webclip.SelectorRule{Selector: `head > meta[property="og:image"]`, Strategy: webclip.StrategyCSS}, true},
		{webclip.SelectorRule{Selector: `meta[content*="by the editors"]`, Strategy: webclip.StrategyCSS}, true},
		{webclip.SelectorRule{Selector: `meta[content~='a > b, c']`, Strategy: webclip.StrategyCSS}, true},
		{webclip.SelectorRule{Selector: `.byline, meta[name="author"]`, Strategy: webclip.StrategyCSS}, true},
		{webclip.SelectorRule{Selector: `span[title="a meta tag"]`, Strategy: webclip.StrategyCSS}, false},
		{webclip.SelectorRule{Selector: `.metadata .author`, Strategy: webclip.StrategyCSS}, false},
		{webclip.SelectorRule{Selector: `meta[name="x"] ~ span`, Strategy: webclip.StrategyCSS}, false},
		{webclip.SelectorRule{Selector: `//meta[@name='author']`, Strategy: webclip.StrategyXPath}, true},
		{webclip.SelectorRule{Selector: `//meta[@name='author']/@content`, Strategy: webclip.StrategyXPath}, false},
		{webclip.SelectorRule{Selector: `//div[@class='meta']`, Strategy: webclip.StrategyXPath}, false},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Selector, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, webclip.TargetsMeta(tt.rule))
		})
	}
}

func TestValidation_Check(t *testing.T) {
	t.Parallel()

	var none *webclip.Validation
	assert.True(t, none.Check("anything"))

	v := &webclip.Validation{DomainContains: []string{"cdn.example.com", "img.example.com"}}
	assert.True(t, v.Check("https://cdn.example.com/a.jpg"))
	assert.False(t, v.Check("https://tracker.example.net/pixel.gif"))

	v = &webclip.Validation{MinLength: 3}
	assert.False(t, v.Check("ab"))
	assert.True(t, v.Check("abc"))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, webclip.KindHTML, webclip.KindOf("content"))
	assert.Equal(t, webclip.KindList, webclip.KindOf("images"))
	assert.Equal(t, webclip.KindList, webclip.KindOf("tags"))
	assert.Equal(t, webclip.KindURL, webclip.KindOf("cover"))
	assert.Equal(t, webclip.KindDate, webclip.KindOf("modified_date"))
	assert.Equal(t, webclip.KindText, webclip.KindOf("description"))
}
