package domain

import (
	"regexp"
	"strings"
	"unicode"

	dErrors "academy/pkg/domain-errors"
)

// MaxSlugLength bounds slugs so they stay usable in URLs and indexes.
const MaxSlugLength = 160

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slug is a URL-safe identifier: lowercase ASCII letters and digits separated
// by single dashes.
type Slug string

// ParseSlug validates s as a slug without altering it.
func ParseSlug(s string) (Slug, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "slug is required")
	}
	if len(s) > MaxSlugLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "slug must be 160 characters or less")
	}
	if !slugPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "slug may only contain lowercase letters, digits and single dashes")
	}
	return Slug(s), nil
}

// Slugify derives a slug from free text such as a title. Non-ASCII runes act
// as separators; callers that need a specific slug should pass one explicitly.
func Slugify(s string) Slug {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > MaxSlugLength {
		out = strings.Trim(out[:MaxSlugLength], "-")
	}
	return Slug(out)
}

func (s Slug) String() string { return string(s) }
