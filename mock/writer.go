package mock

import (
	"context"

	"github.com/fwojciec/webclip"
)

var _ webclip.PageWriter = (*PageWriter)(nil)

// PageWriter is a mock implementation of webclip.PageWriter.
type PageWriter struct {
	WritePageFn func(ctx context.Context, page *webclip.Page) (string, error)
}

func (w *PageWriter) WritePage(ctx context.Context, page *webclip.Page) (string, error) {
	return w.WritePageFn(ctx, page)
}
