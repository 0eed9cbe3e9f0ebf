package domain

import "time"

// MinimumRegistrationAge is the youngest age, in whole years, accepted for registration.
const MinimumRegistrationAge = 12

// HasReachedAge reports whether someone born at birthDate is at least years old at now.
// Uses calendar arithmetic (AddDate), so the exact birthday counts and a Feb 29 birthday
// rolls over to Mar 1 in non-leap years.
//
// Example:
//
//	birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
//	now := time.Date(2012, 1, 15, 0, 0, 0, 0, time.UTC) // exactly 12th birthday
//	HasReachedAge(birthDate, now, 12) // returns true
func HasReachedAge(birthDate, now time.Time, years int) bool {
	reachedAt := birthDate.UTC().AddDate(years, 0, 0)
	return !now.UTC().Before(reachedAt)
}

// IsFutureDate reports whether the calendar date of t is after the calendar date of now.
// Both dates are taken in UTC; localise now with Today first.
func IsFutureDate(t, now time.Time) bool {
	return NewBirthDate(t.UTC()).Time().After(NewBirthDate(now.UTC()).Time())
}

// Today is the calendar date of now as seen in loc, so comparisons against
// zone-free birth dates follow local midnight.
func Today(now time.Time, loc *time.Location) BirthDate {
	if loc == nil {
		loc = time.UTC
	}
	return NewBirthDate(now.In(loc))
}
