//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements webclip.Fetcher.
var _ webclip.Fetcher = (*rod.Fetcher)(nil)

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {}
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fetcher.Fetch(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Fetch_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Client Rendered Post</title></head>
<body>
<article id="post">Loading...</article>
<script>
document.getElementById('post').textContent = 'Rendered article body';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	resp, err := fetcher.Fetch(context.Background(), srv.URL+"/post")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, srv.URL+"/post", resp.URL)
	assert.Contains(t, resp.HTML, "Rendered article body")
	assert.NotContains(t, resp.HTML, "Loading...")
}

func TestFetcher_Fetch_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(100 * time.Millisecond))
	require.NoError(t, err)
	defer fetcher.Close()

	_, err = fetcher.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)

		require.NoError(t, fetcher.Close())
		require.NoError(t, fetcher.Close())
	})

	t.Run("rejects fetches afterwards", func(t *testing.T) {
		t.Parallel()

		fetcher, err := rod.NewFetcher()
		require.NoError(t, err)
		require.NoError(t, fetcher.Close())

		_, err = fetcher.Fetch(context.Background(), "http://example.com")

		require.Error(t, err)
		assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
		assert.Contains(t, webclip.ErrorMessage(err), "closed")
	})
}
