package application

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title: lower case, every run of other
// characters collapsed to "-", no leading or trailing "-".
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// ParseTags splits a comma separated tag field. Order and duplicates are kept;
// blank entries are dropped.
func ParseTags(field string) []string {
	tags := []string{}
	for _, tag := range strings.Split(field, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
