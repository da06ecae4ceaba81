package strings

import (
	"strings"
)

// DefaultMessageMaxLen is the default width of messages in table output.
const DefaultMessageMaxLen = 80

// MinTruncateLen is the minimum maxLen value for Truncate.
const MinTruncateLen = 4

// SingleLine collapses every run of whitespace, newlines included, into one
// space and trims the ends.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate makes s single-line and cuts it to maxLen runes, ending in "..."
// when cut. maxLen is clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = SingleLine(s)

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
