package util

import "strings"

// Truncate shortens s to at most max runes. Multi-byte input is never
// cut mid-character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// NormalizeTask collapses surrounding whitespace on a submitted task.
func NormalizeTask(s string) string {
	return strings.TrimSpace(s)
}
