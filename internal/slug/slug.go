// Package slug derives URL-safe lookup keys from todo titles.
package slug

import (
	"regexp"
	"strings"
)

var (
	specialChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[\s_-]+`)
	edgeHyphens  = regexp.MustCompile(`^-+|-+$`)
)

// Generate lowercases and trims title, drops anything that is not a word
// character, whitespace or hyphen, collapses separator runs into a single
// hyphen and strips hyphens from both ends.
func Generate(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = specialChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return edgeHyphens.ReplaceAllString(s, "")
}
