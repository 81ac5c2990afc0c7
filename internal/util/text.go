package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes shortens s to at most max runes, appending an ellipsis when cut.
// Leading and trailing whitespace is dropped first.
func TruncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
