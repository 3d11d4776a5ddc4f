// Package validate holds the input predicates for contact fields.
package validate

import "regexp"

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// IsValidMobile reports whether s is exactly 10 ASCII digits. No
// country prefix, separators, or surrounding whitespace are tolerated.
func IsValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// IsValidEmail reports whether s looks like local@domain.tld with a
// TLD of at least two letters. Anchored at both ends.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
