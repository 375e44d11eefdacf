// Package htmltomarkdown renders article bodies as Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/webclip"
)

var _ webclip.Converter = (*Converter)(nil)

// Converter renders article HTML as Markdown with ATX headings, "-" bullets
// and fenced code blocks. Links with no text or no target are dropped.
// A Converter is safe for concurrent use.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a Converter with CommonMark, table and strikethrough
// support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
				commonmark.WithBulletListMarker("-"),
				commonmark.WithCodeBlockFence("```"),
				commonmark.WithListEndComment(false),
				commonmark.WithLinkEmptyHrefBehavior(commonmark.LinkBehaviorSkip),
				commonmark.WithLinkEmptyContentBehavior(commonmark.LinkBehaviorSkip),
			),
			table.NewTablePlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert renders html as Markdown without surrounding whitespace and with
// at most one blank line between blocks. Returns EINVALID for blank input.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", webclip.Errorf(webclip.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", webclip.Errorf(webclip.EINTERNAL, "converting HTML to markdown: %v", err)
	}

	return collapseBlankLines(strings.TrimSpace(result)), nil
}

// collapseBlankLines squeezes runs of blank lines into one. Lines inside
// fenced code blocks are kept as they are.
func collapseBlankLines(md string) string {
	lines := strings.Split(md, "\n")
	out := lines[:0]
	inFence := false
	blank := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		isBlank := strings.TrimSpace(line) == ""
		if isBlank && blank && !inFence {
			continue
		}
		blank = isBlank
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
