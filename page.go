package webclip

import "context"

// Page is a converted article ready to be written out.
type Page struct {
	URL      string
	Title    string
	Date     string
	Markdown string

	// Parser names what produced the Markdown: "template:<name>" for the
	// engine, or the alternate parser's name after a rejection.
	Parser string

	Metadata map[string]string
	Warnings []string
}

// PageWriter persists converted pages.
type PageWriter interface {
	// WritePage stores the page and returns where it was written.
	WritePage(ctx context.Context, page *Page) (path string, err error)
}
