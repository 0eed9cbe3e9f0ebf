package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// AgeSuite covers the calendar edges of the minimum-age rule.
type AgeSuite struct {
	suite.Suite
}

func TestAgeSuite(t *testing.T) {
	suite.Run(t, new(AgeSuite))
}

func (s *AgeSuite) TestHasReachedAge_BirthdayBoundaries() {
	s.Run("exactly 12th birthday returns true", func() {
		birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
		now := time.Date(2012, 1, 15, 0, 0, 0, 0, time.UTC)
		s.True(HasReachedAge(birthDate, now, MinimumRegistrationAge))
	})

	s.Run("second before 12th birthday returns false", func() {
		birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
		now := time.Date(2012, 1, 14, 23, 59, 59, 0, time.UTC)
		s.False(HasReachedAge(birthDate, now, MinimumRegistrationAge))
	})

	s.Run("day after 12th birthday returns true", func() {
		birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, time.UTC)
		now := time.Date(2012, 1, 16, 0, 0, 0, 0, time.UTC)
		s.True(HasReachedAge(birthDate, now, MinimumRegistrationAge))
	})
}

func (s *AgeSuite) TestHasReachedAge_LeapYearEdgeCases() {
	s.Run("Feb 29 birthday reaches age on Mar 1 of a non-leap year", func() {
		birthDate := time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)
		s.True(HasReachedAge(birthDate, time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC), 13))
	})

	s.Run("Feb 28 of a non-leap year is too early for a Feb 29 birthday", func() {
		birthDate := time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)
		s.False(HasReachedAge(birthDate, time.Date(2017, 2, 28, 0, 0, 0, 0, time.UTC), 13))
	})

	s.Run("Feb 29 birthday on a leap anniversary", func() {
		birthDate := time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)
		s.True(HasReachedAge(birthDate, time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC), 12))
	})
}

func (s *AgeSuite) TestHasReachedAge_TimezoneHandling() {
	pst := time.FixedZone("PST", -8*60*60)
	birthDate := time.Date(2000, 1, 15, 0, 0, 0, 0, pst)
	now := time.Date(2012, 1, 15, 8, 0, 0, 0, time.UTC)
	s.True(HasReachedAge(birthDate, now, 12))
}

func (s *AgeSuite) TestHasReachedAge_EdgeAges() {
	birthDate := time.Date(2008, 5, 11, 0, 0, 0, 0, time.UTC)

	s.Run("eleven years old returns false", func() {
		s.False(HasReachedAge(birthDate, time.Date(2019, 5, 11, 0, 0, 0, 0, time.UTC), 12))
	})

	s.Run("much older returns true", func() {
		s.True(HasReachedAge(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 12))
	})

	s.Run("future birth date never reaches age", func() {
		future := time.Date(3000, 5, 11, 0, 0, 0, 0, time.UTC)
		s.False(HasReachedAge(future, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0))
	})
}

func (s *AgeSuite) TestIsFutureDate() {
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	s.True(IsFutureDate(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), now))
	s.False(IsFutureDate(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), now), "today is not in the future")
	s.False(IsFutureDate(time.Date(2000, 5, 11, 0, 0, 0, 0, time.UTC), now))
}

func (s *AgeSuite) TestToday() {
	ict := time.FixedZone("ICT", 7*60*60)
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

	s.Equal("2026-10-19", Today(now, time.UTC).String())
	s.Equal("2026-10-20", Today(now, ict).String(), "already tomorrow in UTC+7")
	s.Equal("2026-10-19", Today(now, nil).String())

	s.False(IsFutureDate(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), Today(now, ict).Time()))
	s.True(IsFutureDate(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), Today(now, time.UTC).Time()))
}
