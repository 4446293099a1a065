package common

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify reduces input to lowercase ASCII words joined by hyphens, at most
// maxLen bytes long (0 means unlimited). fallback is used when nothing of
// input survives.
func Slugify(input, fallback string, maxLen int) (string, error) {
	slug := slugify(input, maxLen)
	if slug == "" {
		slug = slugify(fallback, maxLen)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

func slugify(s string, maxLen int) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	slug := strings.Trim(nonSlugChars.ReplaceAllString(lower, "-"), "-")
	if maxLen > 0 && len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	return slug
}
