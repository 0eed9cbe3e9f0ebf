package domain

import (
	"strings"
	"time"

	dErrors "vaxreg/pkg/domain-errors"
)

// BirthDateLayout is the canonical wire format for birth dates.
const BirthDateLayout = "2006-01-02"

// birthDateLayouts are tried in order; the first that parses wins.
// Day-first is listed before month-first, so "05/11/2000" is 5 November.
var birthDateLayouts = []string{
	BirthDateLayout,
	"2/1/2006",
	"1/2/2006",
}

// BirthDate is a calendar date at UTC midnight.
type BirthDate struct {
	t time.Time
}

// ParseBirthDate accepts YYYY-MM-DD, DD/MM/YYYY and MM/DD/YYYY.
func ParseBirthDate(s string) (BirthDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BirthDate{}, dErrors.New(dErrors.CodeInvalidBirthDate, "birth date is empty")
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return BirthDate{t: t.UTC()}, nil
		}
	}
	return BirthDate{}, dErrors.New(dErrors.CodeInvalidBirthDate, "birth date is not in a supported format")
}

// NewBirthDate truncates t to its calendar date.
func NewBirthDate(t time.Time) BirthDate {
	y, m, d := t.Date()
	return BirthDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (b BirthDate) Time() time.Time { return b.t }

func (b BirthDate) IsZero() bool { return b.t.IsZero() }

func (b BirthDate) String() string { return b.t.Format(BirthDateLayout) }

// MarshalText renders the canonical layout for JSON.
func (b BirthDate) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts any supported layout.
func (b *BirthDate) UnmarshalText(text []byte) error {
	parsed, err := ParseBirthDate(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
