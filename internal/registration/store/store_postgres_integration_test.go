//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vaxreg/internal/registration/store"
	"vaxreg/pkg/domain"
	"vaxreg/pkg/testutil"
	"vaxreg/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) TestCreateFindRoundTrip() {
	takenAt := time.Date(2021, time.July, 1, 9, 30, 0, 0, time.UTC)
	reg := testutil.NewRegistrationBuilder().WithRisk(true).WithDose("CoronaVac", 1, takenAt).Build()
	s.Require().NoError(s.store.Create(s.ctx, reg))

	found, err := s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Require().NoError(err)

	s.Equal(reg.CitizenID, found.CitizenID)
	s.Equal(reg.Name, found.Name)
	s.Equal("2000-11-05", found.BirthDate.String())
	s.True(found.IsRisk)
	s.True(reg.RegisteredAt.Equal(found.RegisteredAt))
	s.Require().Len(found.VaccineTaken, 1)
	s.Equal("CoronaVac", found.VaccineTaken[0].Name)
	s.True(takenAt.Equal(found.VaccineTaken[0].TakenAt))
}

func (s *PostgresStoreSuite) TestEmptyDosesComeBackAsEmptySlice() {
	reg := testutil.NewRegistrationBuilder().Build()
	reg.VaccineTaken = nil
	s.Require().NoError(s.store.Create(s.ctx, reg))

	found, err := s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Require().NoError(err)
	s.NotNil(found.VaccineTaken)
	s.Empty(found.VaccineTaken)
}

func (s *PostgresStoreSuite) TestDuplicateCreateConflicts() {
	reg := testutil.NewRegistrationBuilder().Build()
	s.Require().NoError(s.store.Create(s.ctx, reg))
	s.ErrorIs(s.store.Create(s.ctx, reg), store.ErrConflict)
}

func (s *PostgresStoreSuite) TestConcurrentCreateHasOneWinner() {
	result := testutil.RunConcurrent(20, func(int) error {
		return s.store.Create(s.ctx, testutil.NewRegistrationBuilder().Build())
	})

	s.EqualValues(1, result.Successes)
	s.EqualValues(19, result.Conflicts)
	s.EqualValues(0, result.Errors)
}

func (s *PostgresStoreSuite) TestDeleteAndNotFound() {
	reg := testutil.NewRegistrationBuilder().Build()
	s.Require().NoError(s.store.Create(s.ctx, reg))

	s.Require().NoError(s.store.Delete(s.ctx, reg.CitizenID))
	s.ErrorIs(s.store.Delete(s.ctx, reg.CitizenID), store.ErrNotFound)

	_, err := s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrdersByCitizenID() {
	for _, id := range []domain.CitizenID{"9876543210987", "1111111111111", "1234567890123"} {
		reg := testutil.NewRegistrationBuilder().WithCitizenID(id).Build()
		s.Require().NoError(s.store.Create(s.ctx, reg))
	}

	regs, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(regs, 3)
	s.Equal("1111111111111", regs[0].CitizenID.String())
	s.Equal("1234567890123", regs[1].CitizenID.String())
	s.Equal("9876543210987", regs[2].CitizenID.String())
}

func (s *PostgresStoreSuite) TestSchemaRejectsMalformedCitizenID() {
	reg := testutil.NewRegistrationBuilder().WithCitizenID("12345").Build()
	err := s.store.Create(s.ctx, reg)
	s.Error(err)
	s.NotErrorIs(err, store.ErrConflict)
}
