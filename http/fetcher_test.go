package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/webclip"
	webcliphttp "github.com/fwojciec/webclip/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time verification that Fetcher implements webclip.Fetcher
var _ webclip.Fetcher = (*webcliphttp.Fetcher)(nil)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", resp.HTML)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, server.URL, resp.URL)
	})

	t.Run("reports the final URL after redirects", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<p>moved</p>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := webcliphttp.NewFetcher()

		resp, err := fetcher.Fetch(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new", resp.URL)
	})

	t.Run("sends a user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher(webcliphttp.WithUserAgent("test-agent"))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", got)
	})

	t.Run("decodes the declared charset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>caf\xe9</p>"))
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<p>café</p>", resp.HTML)
	})

	t.Run("rejects bodies over the size cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("0123456789"))
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher(webcliphttp.WithMaxBodySize(4))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, webclip.ETOOLARGE, webclip.ErrorCode(err))
	})

	t.Run("accepts a body exactly at the size cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("0123"))
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher(webcliphttp.WithMaxBodySize(4))

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "0123", resp.HTML)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		// Use a very short timeout that will expire before server responds
		fetcher := webcliphttp.NewFetcher(webcliphttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("maps missing pages to ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, webclip.ENOTFOUND, webclip.ErrorCode(err))
		assert.Contains(t, webclip.ErrorMessage(err), "404")
	})

	t.Run("reports server errors as EINTERNAL", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		fetcher := webcliphttp.NewFetcher()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, webclip.EINTERNAL, webclip.ErrorCode(err))
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        []byte
		contentType string
		want        string
	}{
		{
			name: "utf-8 passes through",
			body: []byte("<p>naïve</p>"),
			want: "<p>naïve</p>",
		},
		{
			name:        "header charset wins",
			body:        []byte("<p>caf\xe9</p>"),
			contentType: "text/html; charset=iso-8859-1",
			want:        "<p>café</p>",
		},
		{
			name: "meta charset is honored",
			body: []byte("<html><head><meta charset=\"windows-1251\"></head><body>\xcf\xf0\xe8\xe2\xe5\xf2</body></html>"),
			want: `<html><head><meta charset="windows-1251"></head><body>Привет</body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, webcliphttp.Decode(tt.body, tt.contentType))
		})
	}
}
