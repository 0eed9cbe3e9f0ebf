package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vaxreg/internal/registration/metrics"
	"vaxreg/internal/registration/models"
	"vaxreg/internal/registration/service/mocks"
	"vaxreg/internal/registration/store"
	"vaxreg/pkg/domain"
	dErrors "vaxreg/pkg/domain-errors"
	"vaxreg/pkg/platform/audit"
	"vaxreg/pkg/platform/privacy"
	"vaxreg/pkg/requestcontext"
	"vaxreg/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockStore   *mocks.MockStore
	mockAuditor *mocks.MockAuditPublisher
	metrics     *metrics.Metrics
	service     *Service
	ctx         context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockAuditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.mockStore, logger,
		WithAuditPublisher(s.mockAuditor),
		WithMetrics(s.metrics),
	)
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), testutil.ReferenceNow), "req-1")
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) registrations(outcome string) float64 {
	return promtestutil.ToFloat64(s.metrics.RegistrationsTotal.WithLabelValues(outcome))
}

// expectAudit expects one event with the given action and decision and captures it.
func (s *ServiceSuite) expectAudit(action audit.AuditEvent, decision string) *audit.Event {
	captured := &audit.Event{}
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(string(action), e.Action)
			s.Equal(decision, e.Decision)
			*captured = e
			return nil
		})
	return captured
}

func (s *ServiceSuite) TestRegister_Success() {
	req := testutil.ValidRegisterRequest()
	req.CitizenID = "  " + req.CitizenID + " "
	id := testutil.TestCitizenIDs.Citizen1

	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), id).Return(nil, store.ErrNotFound)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	event := s.expectAudit(audit.EventRegistrationCreated, audit.DecisionAccepted)

	reg, err := s.service.Register(s.ctx, req)
	s.Require().NoError(err)

	s.Equal(id, reg.CitizenID)
	s.Equal("2000-11-05", reg.BirthDate.String(), "day-first layout wins")
	s.False(reg.IsRisk)
	s.NotNil(reg.VaccineTaken)
	s.Empty(reg.VaccineTaken)
	s.Equal(testutil.ReferenceNow, reg.RegisteredAt)

	s.Equal(privacy.SubjectHash(id.String()), event.Subject)
	s.Equal("req-1", event.RequestID)
	s.Equal(testutil.ReferenceNow, event.Timestamp)
	s.InDelta(1, s.registrations(metrics.OutcomeCreated), 0.0001)
}

func (s *ServiceSuite) TestRegister_MissingParameter() {
	blankers := map[string]func(r *models.RegisterRequest){
		"citizen_id": func(r *models.RegisterRequest) { r.CitizenID = "" },
		"name":       func(r *models.RegisterRequest) { r.Name = "" },
		"surname":    func(r *models.RegisterRequest) { r.Surname = "   " },
		"birth_date": func(r *models.RegisterRequest) { r.BirthDate = "" },
		"occupation": func(r *models.RegisterRequest) { r.Occupation = "" },
		"address":    func(r *models.RegisterRequest) { r.Address = "\t" },
	}
	for field, blank := range blankers {
		s.Run(field, func() {
			req := testutil.ValidRegisterRequest()
			blank(&req)

			_, err := s.service.Register(s.ctx, req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
			s.Contains(err.Error(), field)
		})
	}
	s.InDelta(len(blankers), s.registrations(metrics.OutcomeMissingParameter), 0.0001)
}

func (s *ServiceSuite) TestRegister_OptionalFieldsMayBeOmitted() {
	req := testutil.ValidRegisterRequest()
	req.PhoneNumber = ""
	req.IsRisk = ""

	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	reg, err := s.service.Register(s.ctx, req)
	s.Require().NoError(err)
	s.False(reg.IsRisk)
	s.Empty(reg.PhoneNumber)
}

func (s *ServiceSuite) TestRegister_Rejections() {
	cases := []struct {
		name    string
		mutate  func(r *models.RegisterRequest)
		code    dErrors.Code
		outcome string
	}{
		{"citizen id too long", func(r *models.RegisterRequest) { r.CitizenID = "1234567890123456789" }, dErrors.CodeInvalidCitizenID, metrics.OutcomeInvalidCitizenID},
		{"citizen id too short", func(r *models.RegisterRequest) { r.CitizenID = "123456789012" }, dErrors.CodeInvalidCitizenID, metrics.OutcomeInvalidCitizenID},
		{"citizen id of 65 digits", func(r *models.RegisterRequest) { r.CitizenID = strings.Repeat("1", 65) }, dErrors.CodeInvalidCitizenID, metrics.OutcomeInvalidCitizenID},
		{"citizen id not numeric", func(r *models.RegisterRequest) { r.CitizenID = "12345678901ab" }, dErrors.CodeInvalidCitizenID, metrics.OutcomeInvalidCitizenID},
		{"free text birth date", func(r *models.RegisterRequest) { r.BirthDate = "abcaddd" }, dErrors.CodeInvalidBirthDate, metrics.OutcomeInvalidBirthDate},
		{"month/year/day birth date", func(r *models.RegisterRequest) { r.BirthDate = "11/2000/05" }, dErrors.CodeInvalidBirthDate, metrics.OutcomeInvalidBirthDate},
		{"birth date of 33 characters", func(r *models.RegisterRequest) { r.BirthDate = strings.Repeat("a", 33) }, dErrors.CodeInvalidBirthDate, metrics.OutcomeInvalidBirthDate},
		{"younger than twelve", func(r *models.RegisterRequest) { r.BirthDate = "11/05/2020" }, dErrors.CodeMinimumAgeNotReached, metrics.OutcomeMinimumAge},
		{"born in the future", func(r *models.RegisterRequest) { r.BirthDate = "11/05/3000" }, dErrors.CodeMinimumAgeNotReached, metrics.OutcomeMinimumAge},
		{"one day short of twelve", func(r *models.RegisterRequest) { r.BirthDate = "2009-06-02" }, dErrors.CodeMinimumAgeNotReached, metrics.OutcomeMinimumAge},
		{"bad id wins over bad date", func(r *models.RegisterRequest) {
			r.CitizenID = "12"
			r.BirthDate = "abcaddd"
		}, dErrors.CodeInvalidCitizenID, metrics.OutcomeInvalidCitizenID},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := testutil.ValidRegisterRequest()
			tc.mutate(&req)
			before := s.registrations(tc.outcome)
			s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, e audit.Event) error {
					s.Equal(string(audit.EventRegistrationRejected), e.Action)
					s.Equal(string(tc.code), e.Reason)
					return nil
				})

			_, err := s.service.Register(s.ctx, req)
			s.Require().Error(err)
			s.Equal(tc.code, dErrors.CodeOf(err))
			s.InDelta(before+1, s.registrations(tc.outcome), 0.0001)
		})
	}
}

func (s *ServiceSuite) TestRegister_ExactlyTwelveToday() {
	req := testutil.ValidRegisterRequest()
	req.BirthDate = "2009-06-01"

	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Register(s.ctx, req)
	s.NoError(err)
}

func (s *ServiceSuite) TestRegister_AlreadyRegistered() {
	existing := testutil.NewRegistrationBuilder().Build()
	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), existing.CitizenID).Return(existing, nil)
	s.expectAudit(audit.EventRegistrationRejected, audit.DecisionRejected)

	_, err := s.service.Register(s.ctx, testutil.ValidRegisterRequest())
	s.Equal(dErrors.CodeAlreadyRegistered, dErrors.CodeOf(err))
	s.InDelta(1, s.registrations(metrics.OutcomeAlreadyRegistered), 0.0001)
}

func (s *ServiceSuite) TestRegister_LostRaceOnCreate() {
	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(store.ErrConflict)
	s.expectAudit(audit.EventRegistrationRejected, audit.DecisionRejected)

	_, err := s.service.Register(s.ctx, testutil.ValidRegisterRequest())
	s.Equal(dErrors.CodeAlreadyRegistered, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestRegister_StoreFailureIsInternal() {
	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := s.service.Register(s.ctx, testutil.ValidRegisterRequest())
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	s.InDelta(1, s.registrations(metrics.OutcomeError), 0.0001)
}

func (s *ServiceSuite) TestRegister_AuditFailureDoesNotFailRequest() {
	s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)
	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.mockAuditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	_, err := s.service.Register(s.ctx, testutil.ValidRegisterRequest())
	s.NoError(err)
}

func (s *ServiceSuite) TestRegister_MinimumAgeOverride() {
	svc := New(s.mockStore, nil, WithMinimumAge(25))
	req := testutil.ValidRegisterRequest()

	_, err := svc.Register(s.ctx, req)
	s.Equal(dErrors.CodeMinimumAgeNotReached, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestRegister_TwelfthBirthdayFollowsConfiguredZone() {
	// 20:00 UTC on 1 June is already 2 June in UTC+7.
	ctx := requestcontext.WithTime(context.Background(), time.Date(2021, 6, 1, 20, 0, 0, 0, time.UTC))
	req := testutil.ValidRegisterRequest()
	req.BirthDate = "2009-06-02"

	s.Run("UTC has not reached the birthday", func() {
		_, err := New(s.mockStore, nil).Register(ctx, req)
		s.Equal(dErrors.CodeMinimumAgeNotReached, dErrors.CodeOf(err))
	})

	s.Run("UTC+7 has", func() {
		s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, store.ErrNotFound)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		reg, err := New(s.mockStore, nil, WithLocation(time.FixedZone("ICT", 7*60*60))).Register(ctx, req)
		s.Require().NoError(err)
		s.Equal("2009-06-02", reg.BirthDate.String())
	})
}

func (s *ServiceSuite) TestGet() {
	s.Run("found", func() {
		existing := testutil.NewRegistrationBuilder().Build()
		s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), existing.CitizenID).Return(existing, nil)

		reg, err := s.service.Get(s.ctx, existing.CitizenID.String())
		s.Require().NoError(err)
		s.Equal(existing, reg)
	})

	s.Run("absent", func() {
		s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), testutil.TestCitizenIDs.Citizen2).Return(nil, store.ErrNotFound)

		_, err := s.service.Get(s.ctx, testutil.TestCitizenIDs.Citizen2.String())
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("malformed id never reaches the store", func() {
		_, err := s.service.Get(s.ctx, "not-an-id")
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("store failure", func() {
		s.mockStore.EXPECT().FindByCitizenID(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := s.service.Get(s.ctx, testutil.TestCitizenIDs.Citizen3.String())
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})

	s.InDelta(1, promtestutil.ToFloat64(s.metrics.LookupsTotal.WithLabelValues("found")), 0.0001)
	s.InDelta(2, promtestutil.ToFloat64(s.metrics.LookupsTotal.WithLabelValues("not_found")), 0.0001)
}

func (s *ServiceSuite) TestRemove() {
	s.Run("removes and audits", func() {
		id := testutil.TestCitizenIDs.Citizen1
		s.mockStore.EXPECT().Delete(gomock.Any(), id).Return(nil)
		event := s.expectAudit(audit.EventRegistrationRemoved, audit.DecisionGranted)

		ctx := requestcontext.WithClientIP(s.ctx, "203.0.113.77")
		s.Require().NoError(s.service.Remove(ctx, id.String()))
		s.Equal("203.0.113.0", event.Actor)
		s.Equal(privacy.SubjectHash(id.String()), event.Subject)
	})

	s.Run("absent", func() {
		s.mockStore.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(store.ErrNotFound)

		err := s.service.Remove(s.ctx, testutil.TestCitizenIDs.Citizen2.String())
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("malformed id", func() {
		err := s.service.Remove(s.ctx, "123")
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.InDelta(1, promtestutil.ToFloat64(s.metrics.RemovalsTotal.WithLabelValues("removed")), 0.0001)
	s.InDelta(2, promtestutil.ToFloat64(s.metrics.RemovalsTotal.WithLabelValues("not_found")), 0.0001)
}

func (s *ServiceSuite) TestList() {
	regs := []*models.Registration{
		testutil.NewRegistrationBuilder().Build(),
		testutil.NewRegistrationBuilder().WithCitizenID(testutil.TestCitizenIDs.Citizen2).Build(),
	}
	s.mockStore.EXPECT().List(gomock.Any()).Return(regs, nil)
	s.expectAudit(audit.EventRegistrationsListed, audit.DecisionGranted)

	got, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(got, 2)

	s.mockStore.EXPECT().List(gomock.Any()).Return(nil, errors.New("boom"))
	_, err = s.service.List(s.ctx)
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}

func TestRegister_ConcurrentDuplicatesHaveOneWinner(t *testing.T) {
	svc := New(store.NewInMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := requestcontext.WithTime(context.Background(), testutil.ReferenceNow)

	result := testutil.RunConcurrent(50, func(int) error {
		_, err := svc.Register(ctx, testutil.ValidRegisterRequest())
		return err
	})

	if result.Successes != 1 || result.Conflicts != 49 || result.Errors != 0 {
		t.Fatalf("expected 1 success and 49 duplicates, got %+v", result)
	}

	reg, err := svc.Get(ctx, testutil.TestCitizenIDs.Citizen1.String())
	if err != nil {
		t.Fatalf("get after concurrent register: %v", err)
	}
	if reg.BirthDate != domain.NewBirthDate(time.Date(2000, time.November, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected birth date %s", reg.BirthDate)
	}
}
