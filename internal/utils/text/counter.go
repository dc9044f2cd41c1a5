// Package text provides small helpers for Unicode-aware text handling.
// Article bodies and summaries are mostly Japanese, so every length here is
// measured in runes rather than bytes.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
// Examples:
//
//	CountRunes("hello")      // 5
//	CountRunes("こんにちは") // 5
//	CountRunes("")           // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes shortens text to at most limit runes and appends suffix when
// anything was cut. The result never splits a multi-byte character.
func TruncateRunes(text string, limit int, suffix string) string {
	if limit < 0 {
		limit = 0
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + suffix
		}
		n++
	}
	return text
}
