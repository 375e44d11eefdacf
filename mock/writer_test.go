package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where PageWriter is expected
	var _ webclip.PageWriter = &mock.PageWriter{}
}

func TestPageWriter_WritePage(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WritePageFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *webclip.Page
		w := &mock.PageWriter{
			WritePageFn: func(_ context.Context, page *webclip.Page) (string, error) {
				calledWith = page
				return "out/example.com/post.md", nil
			},
		}

		page := &webclip.Page{
			URL:      "https://example.com/post",
			Title:    "Test Post",
			Markdown: "# Test Post",
		}

		path, err := w.WritePage(context.Background(), page)

		require.NoError(t, err)
		assert.Equal(t, page, calledWith)
		assert.Equal(t, "out/example.com/post.md", path)
	})
}
