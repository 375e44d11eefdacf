//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/webclip"
	"github.com/fwojciec/webclip/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Page(t *testing.T) {
	t.Parallel()

	t.Run("counts opened tabs", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
		require.NoError(t, err)
		defer manager.Close()

		for range 2 {
			page, err := manager.Page()
			require.NoError(t, err)
			_ = page.Close()
		}

		assert.Equal(t, 2, manager.Opened())
	})

	t.Run("replaces the browser after max tabs", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(2))
		require.NoError(t, err)
		defer manager.Close()

		first, err := manager.Page()
		require.NoError(t, err)
		defer first.Close()
		second, err := manager.Page()
		require.NoError(t, err)
		defer second.Close()

		third, err := manager.Page()
		require.NoError(t, err)
		defer third.Close()

		assert.NotSame(t, first.Browser(), third.Browser())
		assert.Equal(t, 1, manager.Opened())
	})

	t.Run("fails after Close", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager()
		require.NoError(t, err)
		require.NoError(t, manager.Close())
		require.NoError(t, manager.Close())

		_, err = manager.Page()

		assert.Equal(t, webclip.EINVALID, webclip.ErrorCode(err))
	})
}
