package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/webclip"
)

// truncateTitle shortens a title longer than the template allows and
// records a warning.
func truncateTitle(q webclip.Quality, res *webclip.Result) {
	title, n := clampTitle(res.Title, q.MaxTitleLength)
	if title == res.Title {
		return
	}
	res.Title = title
	res.Warn(fmt.Sprintf("title truncated from %d to %d characters", n, q.MaxTitleLength))
}

// clampTitle cuts title to max runes when max is positive. It also returns
// the original rune count.
func clampTitle(title string, max int) (string, int) {
	runes := []rune(title)
	if max <= 0 || len(runes) <= max {
		return title, len(runes)
	}
	return strings.TrimSpace(string(runes[:max])), len(runes)
}

// assess sets the verdict. Lengths are rune counts of the post-processed
// plain text; content exactly min_content_length long passes. The minimum
// only applies to content that is present or required.
func assess(q webclip.Quality, res *webclip.Result) {
	if q.RequireTitle && res.Title == "" {
		res.Fail(webclip.EQUALITY, "title is required but was not resolved")
	}

	n := utf8.RuneCountInString(res.Text)
	switch {
	case n == 0 && q.RequireContent:
		res.Fail(webclip.EQUALITY, "content is required but was not resolved")
	case n > 0 && n < q.MinContentLength:
		res.Fail(webclip.EQUALITY, fmt.Sprintf("content is %d characters, minimum is %d", n, q.MinContentLength))
	}

	switch {
	case res.Verdict == webclip.VerdictFail:
	case len(res.Warnings) > 0:
		res.Verdict = webclip.VerdictWarn
	default:
		res.Verdict = webclip.VerdictPass
	}
}
