package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webclip"
)

// Constants behind the computed metadata fields.
const (
	CharsPerWord   = 5
	WordsPerMinute = 200
)

// WordCount estimates the number of words in text.
func WordCount(text string) int {
	return utf8.RuneCountInString(text) / CharsPerWord
}

// ReadingTime renders the reading time for words, never less than a minute.
func ReadingTime(words int) string {
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min", minutes)
}

// ContentHash fingerprints the article text.
func ContentHash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// assembleMetadata resolves every metadata rule chain, fills fallbacks from
// the primary fields and adds the computed fields. It surfaces the keys
// listed in the template's output into res.Metadata and returns all values
// for header rendering.
func assembleMetadata(ctx context.Context, r *resolver, t *webclip.Template, res *webclip.Result) (map[string]string, error) {
	keys := make([]string, 0, len(t.Metadata))
	for key := range t.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make(map[string]string, len(keys)+8)
	for _, key := range keys {
		name := "metadata." + key
		fr, err := r.resolve(ctx, name, t.Metadata[key], webclip.KindOf(key))
		if err != nil {
			return nil, err
		}
		if !fr.Resolved() {
			continue
		}
		res.Fields[name] = fr
		values[key] = fr.Value
		if key == webclip.MetaTitle {
			values[key], _ = clampTitle(stripTitleSuffix(fr.Value, t.TitleSeparators), t.Quality.MaxTitleLength)
		}
	}

	for key, v := range map[string]string{
		webclip.MetaTitle:  res.Title,
		webclip.MetaAuthor: res.Author,
		webclip.MetaDate:   res.Date,
		webclip.MetaImage:  res.Cover,
	} {
		if values[key] == "" && v != "" {
			values[key] = v
		}
	}
	values[webclip.MetaSource] = res.URL

	if res.Text != "" {
		words := WordCount(res.Text)
		values[webclip.MetaWordCount] = strconv.Itoa(words)
		values[webclip.MetaReadingTime] = ReadingTime(words)
		values[webclip.MetaContentHash] = ContentHash(res.Text)
	}

	for _, key := range t.Output.MetadataFields {
		if v := values[key]; v != "" {
			res.Metadata[key] = v
		}
	}
	return values, nil
}
