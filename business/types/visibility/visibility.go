// Package visibility represents the category visibility type in the system.
package visibility

import "fmt"

// The set of visibilities that can be used.
var (
	Public = newVisibility("PUBLIC")
	Hidden = newVisibility("HIDDEN")
)

// =============================================================================

// Set of known visibilities.
var visibilities = make(map[string]Visibility)

// Visibility represents a category visibility in the system.
type Visibility struct {
	value string
}

func newVisibility(visibility string) Visibility {
	v := Visibility{visibility}
	visibilities[visibility] = v
	return v
}

// String returns the name of the visibility.
func (v Visibility) String() string {
	return v.value
}

// Equal provides support for the go-cmp package and testing.
func (v Visibility) Equal(v2 Visibility) bool {
	return v.value == v2.value
}

// MarshalText provides support for logging and any marshal needs.
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.value), nil
}

// =============================================================================

// Parse parses the string value and returns a visibility if one exists.
func Parse(value string) (Visibility, error) {
	visibility, exists := visibilities[value]
	if !exists {
		return Visibility{}, fmt.Errorf("invalid visibility %q", value)
	}

	return visibility, nil
}

// MustParse parses the string value and returns a visibility if one exists.
// If an error occurs the function panics.
func MustParse(value string) Visibility {
	visibility, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return visibility
}
