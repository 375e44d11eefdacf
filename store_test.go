package webclip_test

import (
	"testing"

	"github.com/fwojciec/webclip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmpl(name string, priority int, domains ...string) *webclip.Template {
	t := &webclip.Template{Name: name, Priority: priority, Domains: domains}
	t.Normalize()
	return t
}

func newStore(t *testing.T, templates ...*webclip.Template) *webclip.TemplateStore {
	t.Helper()

	all := append([]*webclip.Template{tmpl(webclip.GenericTemplateName, 0, webclip.WildcardDomain)}, templates...)
	store, err := webclip.NewTemplateStore(all)
	require.NoError(t, err)
	return store
}

func TestNewTemplateStore(t *testing.T) {
	t.Parallel()

	t.Run("fails without generic template", func(t *testing.T) {
		t.Parallel()

		_, err := webclip.NewTemplateStore([]*webclip.Template{tmpl("blog", 10, "blog.example.com")})

		require.Error(t, err)
		assert.Equal(t, webclip.EINTERNAL, webclip.ErrorCode(err))
	})
}

func TestTemplateStore_TemplateForURL(t *testing.T) {
	t.Parallel()

	t.Run("returns generic for unknown hosts and junk input", func(t *testing.T) {
		t.Parallel()

		store := newStore(t, tmpl("blog", 10, "blog.example.com"))

		for _, u := range []string{"https://unknown.org/post", "", "not a url", "::::", "/relative/path"} {
			got := store.TemplateForURL(u)
			require.NotNil(t, got, u)
			assert.Equal(t, webclip.GenericTemplateName, got.Name, u)
		}
	})

	t.Run("strips www and port before matching", func(t *testing.T) {
		t.Parallel()

		store := newStore(t, tmpl("blog", 10, "blog.example.com"))

		assert.Equal(t, "blog", store.TemplateForURL("https://www.blog.example.com:8443/p/1").Name)
		assert.Equal(t, "blog", store.TemplateForURL("HTTPS://BLOG.EXAMPLE.COM/").Name)
	})

	t.Run("higher priority wins among exact matches", func(t *testing.T) {
		t.Parallel()

		store := newStore(t,
			tmpl("low", 50, "blog.example.com"),
			tmpl("high", 100, "blog.example.com"),
		)

		assert.Equal(t, "high", store.TemplateForURL("https://blog.example.com/post").Name)
	})

	t.Run("exact match outranks a higher priority wildcard", func(t *testing.T) {
		t.Parallel()

		store := newStore(t,
			tmpl("exact", 1, "blog.example.com"),
			tmpl("wild", 1000, "*.example.com"),
		)

		assert.Equal(t, "exact", store.TemplateForURL("https://blog.example.com/post").Name)
		assert.Equal(t, "wild", store.TemplateForURL("https://shop.example.com/post").Name)
	})

	t.Run("more specific wildcard wins before priority", func(t *testing.T) {
		t.Parallel()

		store := newStore(t,
			tmpl("broad", 100, "*.com"),
			tmpl("narrow", 1, "*.example.com"),
		)

		assert.Equal(t, "narrow", store.TemplateForURL("https://news.example.com/").Name)
		assert.Equal(t, "broad", store.TemplateForURL("https://news.other.com/").Name)
	})

	t.Run("priority breaks ties between equally specific wildcards", func(t *testing.T) {
		t.Parallel()

		store := newStore(t,
			tmpl("a", 50, "*.example.com"),
			tmpl("b", 100, "*.example.com"),
		)

		assert.Equal(t, "b", store.TemplateForURL("https://x.example.com/").Name)
	})
}

func TestTemplateStore_TemplateByName(t *testing.T) {
	t.Parallel()

	store := newStore(t, tmpl("blog", 10, "blog.example.com"))

	got, err := store.TemplateByName("blog")
	require.NoError(t, err)
	assert.Equal(t, "blog", got.Name)

	_, err = store.TemplateByName("missing")
	assert.Equal(t, webclip.ENOTFOUND, webclip.ErrorCode(err))

	names := make([]string, 0)
	for _, tt := range store.Templates() {
		names = append(names, tt.Name)
	}
	assert.Equal(t, []string{"blog", webclip.GenericTemplateName}, names)
}
