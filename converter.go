package webclip

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
