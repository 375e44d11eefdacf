package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/webclip"
	"gopkg.in/yaml.v3"
)

var (
	placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// format renders optional frontmatter, the header and the Markdown body.
func (e *Engine) format(out webclip.Output, values map[string]string, res *webclip.Result) (string, error) {
	var parts []string

	if out.IncludeMetadata {
		fm, err := frontmatter(out.MetadataFields, res.Metadata)
		if err != nil {
			return "", err
		}
		parts = append(parts, fm)
	}

	if header := renderHeader(out.HeaderTemplate, headerValues(values, res)); header != "" {
		parts = append(parts, header)
	}

	if res.ContentHTML != "" {
		body, err := e.converter.Convert(res.ContentHTML)
		if err != nil {
			return "", err
		}
		if body = strings.TrimSpace(body); body != "" {
			parts = append(parts, body)
		}
	}

	return strings.Join(parts, "\n\n") + "\n", nil
}

// headerValues prefers the final primary values over metadata rules for
// the standard placeholders.
func headerValues(values map[string]string, res *webclip.Result) map[string]string {
	out := make(map[string]string, len(values)+4)
	for k, v := range values {
		out[k] = v
	}
	for key, v := range map[string]string{
		webclip.MetaTitle:  res.Title,
		webclip.MetaAuthor: res.Author,
		webclip.MetaDate:   res.Date,
		webclip.MetaSource: res.URL,
	} {
		if v != "" {
			out[key] = v
		}
	}
	return out
}

// renderHeader substitutes {name} placeholders. A line whose placeholders
// all resolve empty is dropped, so no dangling "Author:" label remains.
func renderHeader(header string, values map[string]string) string {
	lines := strings.Split(header, "\n")
	kept := lines[:0]
	for _, line := range lines {
		matches := placeholderRe.FindAllStringSubmatch(line, -1)
		if len(matches) > 0 {
			empty := true
			for _, m := range matches {
				if values[m[1]] != "" {
					empty = false
					break
				}
			}
			if empty {
				continue
			}
		}
		kept = append(kept, placeholderRe.ReplaceAllStringFunc(line, func(m string) string {
			return values[m[1:len(m)-1]]
		}))
	}
	return strings.TrimSpace(blankRunRe.ReplaceAllString(strings.Join(kept, "\n"), "\n\n"))
}

// frontmatter renders the surfaced metadata as a YAML block in field order.
func frontmatter(fields []string, metadata map[string]string) (string, error) {
	var b strings.Builder
	b.WriteString("---\n")
	seen := make(map[string]bool, len(fields))
	for _, key := range fields {
		v, ok := metadata[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true

		var entry any = v
		if key == webclip.MetaWordCount {
			if n, err := strconv.Atoi(v); err == nil {
				entry = n
			}
		}
		out, err := yaml.Marshal(map[string]any{key: entry})
		if err != nil {
			return "", webclip.Errorf(webclip.EINTERNAL, "encoding frontmatter field %s: %v", key, err)
		}
		b.Write(out)
	}
	b.WriteString("---")
	return b.String(), nil
}
