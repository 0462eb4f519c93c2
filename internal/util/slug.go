// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches whitespace, underscores and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/\\]+`)
	// Matches anything outside [a-z0-9-].
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// FileSlug reduces a display name to an ASCII slug that is safe as a file
// name prefix on every platform. The result is at most maxLen bytes; a
// non-positive maxLen means no limit.
//
// Examples:
//
//	"Sunset  Over Hills!" → "sunset-over-hills"
//	"AC/DC"               → "ac-dc"
//	"আকাশ"                → ""
func FileSlug(input string, maxLen int) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if maxLen > 0 && len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	return s
}
