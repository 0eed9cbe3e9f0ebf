// Package string holds small helpers for normalising raw request input.
package string

import "strings"

// TrimStrings trims surrounding whitespace from each field in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsASCIIDigits reports whether s is non-empty and consists of 0-9 only. Other Unicode
// decimal digits are rejected on purpose: identifiers are compared byte-wise.
func IsASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
