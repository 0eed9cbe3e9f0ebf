// Package domain provides the value types a registration is built from.
package domain

import (
	"strings"

	dErrors "vaxreg/pkg/domain-errors"
	str "vaxreg/pkg/string"
)

// CitizenIDLength is the number of digits in a national citizen identifier.
const CitizenIDLength = 13

// CitizenID is a validated 13-digit national identifier. It is the registration key.
type CitizenID string

// ParseCitizenID validates s at a trust boundary. Surrounding whitespace is ignored.
func ParseCitizenID(s string) (CitizenID, error) {
	s = strings.TrimSpace(s)
	if len(s) != CitizenIDLength {
		return "", dErrors.New(dErrors.CodeInvalidCitizenID, "citizen ID must be exactly 13 digits")
	}
	if !str.IsASCIIDigits(s) {
		return "", dErrors.New(dErrors.CodeInvalidCitizenID, "citizen ID must contain only digits")
	}
	return CitizenID(s), nil
}

func (id CitizenID) String() string { return string(id) }

func (id CitizenID) IsNil() bool { return id == "" }

// Redacted returns the ID with all but the last four digits masked, for logs.
func (id CitizenID) Redacted() string {
	if len(id) <= 4 {
		return "****"
	}
	return "****" + string(id[len(id)-4:])
}
