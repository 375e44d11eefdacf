package crawl

import (
	"fmt"
	"strings"
)

// DisplayURL shortens a URL for progress output. The scheme is dropped and
// long URLs keep their tail, which names the article, behind "...".
func DisplayURL(rawURL string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(r[:maxLen])
	}
	return "..." + string(r[len(r)-maxLen+3:])
}

// FormatBytes formats a byte count for humans.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Summary describes the batch outcome in one line. Zero counts other than
// saved pages are left out.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saved %d pages (%s)", r.Saved, FormatBytes(r.Bytes))
	if r.Fallback > 0 {
		fmt.Fprintf(&b, ", %d via alternate parser", r.Fallback)
	}
	if r.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", r.Failed)
	}
	if r.Skipped > 0 {
		fmt.Fprintf(&b, ", %d duplicates skipped", r.Skipped)
	}
	return b.String()
}
