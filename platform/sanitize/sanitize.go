// Package sanitize provides text sanitization for user-provided input.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSearchTermRunes bounds a search term after cleaning.
const MaxSearchTermRunes = 200

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
	entityDecoder = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", "\"", "&#39;", "'")
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityDecoder.Replace(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// SearchTerm cleans a free-text store search: markup is dropped, runs of
// whitespace collapse to one space and the result is capped at
// MaxSearchTermRunes.
func SearchTerm(s string) string {
	result := strings.Join(strings.Fields(StripHTML(s)), " ")
	if utf8.RuneCountInString(result) <= MaxSearchTermRunes {
		return result
	}
	runes := []rune(result)
	return strings.TrimSpace(string(runes[:MaxSearchTermRunes]))
}
