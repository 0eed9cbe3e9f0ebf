package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	dErrors "vaxreg/pkg/domain-errors"
)

type BirthDateSuite struct {
	suite.Suite
}

func TestBirthDateSuite(t *testing.T) {
	suite.Run(t, new(BirthDateSuite))
}

func (s *BirthDateSuite) TestAcceptedLayouts() {
	cases := map[string]time.Time{
		"2000-05-11": time.Date(2000, 5, 11, 0, 0, 0, 0, time.UTC),
		"11/05/2000": time.Date(2000, 5, 11, 0, 0, 0, 0, time.UTC),
		"05/11/2000": time.Date(2000, 11, 5, 0, 0, 0, 0, time.UTC),
		"5/11/2000":  time.Date(2000, 11, 5, 0, 0, 0, 0, time.UTC),
		"05/13/2000": time.Date(2000, 5, 13, 0, 0, 0, 0, time.UTC),
		"11/05/3000": time.Date(3000, 5, 11, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		s.Run(input, func() {
			got, err := ParseBirthDate(input)
			s.Require().NoError(err)
			s.True(want.Equal(got.Time()), "got %s", got)
		})
	}
}

func (s *BirthDateSuite) TestRejectedLayouts() {
	for _, input := range []string{"abcaddd", "11/2000/05", "2000/05/11", "32/13/2000", "", "  ", "2000-5-11x"} {
		s.Run(input, func() {
			_, err := ParseBirthDate(input)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidBirthDate))
		})
	}
}

func (s *BirthDateSuite) TestJSONUsesCanonicalLayout() {
	b, err := ParseBirthDate("11/05/2000")
	s.Require().NoError(err)

	raw, err := json.Marshal(struct {
		BirthDate BirthDate `json:"birth_date"`
	}{b})
	s.Require().NoError(err)
	s.JSONEq(`{"birth_date":"2000-05-11"}`, string(raw))

	var decoded struct {
		BirthDate BirthDate `json:"birth_date"`
	}
	s.Require().NoError(json.Unmarshal(raw, &decoded))
	s.Equal(b, decoded.BirthDate)
}

func TestBirthDate_CanonicalRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := time.Date(
			rapid.IntRange(1900, 2100).Draw(t, "year"),
			time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
			rapid.IntRange(1, 28).Draw(t, "day"),
			0, 0, 0, 0, time.UTC,
		)
		for _, layout := range []string{"2006-01-02", "02/01/2006"} {
			got, err := ParseBirthDate(d.Format(layout))
			if err != nil {
				t.Fatalf("%s rejected: %v", d.Format(layout), err)
			}
			if !got.Time().Equal(d) {
				t.Fatalf("%s parsed as %s", d.Format(layout), got)
			}
		}
	})
}
