package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a display name and drops all whitespace, chat
// display names are compared this way since users rename freely.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	return whitespaceRegex.ReplaceAllString(name, "")
}

// MatchName reports whether any of the names contains any of the patterns
// once both are normalized.
func MatchName(names []string, patterns []string) bool {
	for _, name := range names {
		name = NormalizeName(name)
		for _, p := range patterns {
			if strings.Contains(name, NormalizeName(p)) {
				return true
			}
		}
	}
	return false
}
