package posts

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^\w-]+`)

// Slugify derives a URL slug from a title: lowercased, spaces become
// dashes, everything outside [a-z0-9_-] is dropped.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	return nonSlugChars.ReplaceAllString(s, "")
}
