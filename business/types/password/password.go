// Package password represents a clear-text password in the system. The value
// only exists between form input and hash generation.
package password

import "fmt"

const minLength = 8

// Password represents a password in the system.
type Password struct {
	value string
}

// String hides the value from accidental logging.
func (p Password) String() string {
	return "********"
}

// Clear returns the clear-text value for hashing.
func (p Password) Clear() string {
	return p.value
}

// Equal provides support for the go-cmp package and testing.
func (p Password) Equal(p2 Password) bool {
	return p.value == p2.value
}

// =============================================================================

// Parse parses the string value and returns a password if the value complies
// with the rules for a password.
func Parse(value string) (Password, error) {
	if len(value) < minLength {
		return Password{}, fmt.Errorf("password must be at least %d characters", minLength)
	}

	return Password{value}, nil
}

// MustParse parses the string value and returns a password if the value
// complies with the rules. If an error occurs the function panics.
func MustParse(value string) Password {
	password, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return password
}
