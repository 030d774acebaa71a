// Package source captures the material a quiz is generated from: pasted
// text, PDF documents and web pages.
package source

import (
	"strings"
	"unicode/utf8"
)

// MaxChars is the longest source kept from a web page.
const MaxChars = 200000

// TruncatedMarker is appended to text cut by Truncate.
const TruncatedMarker = "\n\n[Truncated]"

// Normalize collapses every run of whitespace to one space and trims the
// ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts text to max characters and marks the cut. Text that fits
// is returned unchanged.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)
	return string(r[:max]) + TruncatedMarker
}
