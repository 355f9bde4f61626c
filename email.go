package mailroom

import "regexp"

// Deliberately permissive: local@domain.tld with no whitespace. Anything
// stricter starts rejecting valid-but-unusual addresses.
var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s looks like an email address.
func ValidateEmail(s string) bool {
	return emailRegexp.MatchString(s)
}
