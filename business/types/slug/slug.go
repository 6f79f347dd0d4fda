// Package slug represents a URL slug in the system.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// slugRegEx requires lowercase letters, digits, and single hyphens.
var slugRegEx = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slug represents a URL slug in the system.
type Slug struct {
	value string
}

// String returns the value of the slug.
func (s Slug) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s Slug) Equal(s2 Slug) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Slug) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// WithSuffix returns a new slug with the specified integer suffix appended.
// Used to resolve uniqueness collisions.
func (s Slug) WithSuffix(n int) Slug {
	return Slug{fmt.Sprintf("%s-%d", s.value, n)}
}

// =============================================================================

// Parse parses the string value and returns a slug if the value complies
// with the rules for a slug.
func Parse(value string) (Slug, error) {
	if !slugRegEx.MatchString(value) {
		return Slug{}, fmt.Errorf("invalid slug %q", value)
	}

	return Slug{value}, nil
}

// MustParse parses the string value and returns a slug if the value
// complies with the rules for a slug. If an error occurs the function panics.
func MustParse(value string) Slug {
	slug, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return slug
}

// FromName derives a slug from free-form text by lowercasing and replacing
// runs of non-alphanumeric characters with single hyphens.
func FromName(value string) (Slug, error) {
	var b strings.Builder
	lastHyphen := true

	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return Parse(strings.Trim(b.String(), "-"))
}
