package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vaxreg/internal/registration/metrics"
	"vaxreg/internal/registration/models"
	"vaxreg/internal/registration/store"
	"vaxreg/internal/registration/tracer"
	"vaxreg/pkg/domain"
	dErrors "vaxreg/pkg/domain-errors"
	"vaxreg/pkg/platform/audit"
	adminmw "vaxreg/pkg/platform/middleware/admin"
	"vaxreg/pkg/platform/privacy"
	platformsync "vaxreg/pkg/platform/sync"
	"vaxreg/pkg/requestcontext"
)

// Store persists registrations.
// Error Contract:
// - Create returns store.ErrConflict when the citizen ID is already registered
// - FindByCitizenID and Delete return store.ErrNotFound when no record exists
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByCitizenID(ctx context.Context, id domain.CitizenID) (*models.Registration, error)
	Delete(ctx context.Context, id domain.CitizenID) error
	List(ctx context.Context) ([]*models.Registration, error)
}

// AuditPublisher records registration decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// Service applies the registration rules and owns the create/read/delete lifecycle.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
	locks   *platformsync.ShardedMutex
	minAge  int
	loc     *time.Location
}

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		logger: logger,
		tracer: tracer.NewNoop(),
		locks:  platformsync.NewShardedMutex(),
		minAge: domain.MinimumRegistrationAge,
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMinimumAge overrides the minimum age in whole years. Non-positive values are ignored.
func WithMinimumAge(years int) Option {
	return func(s *Service) {
		if years > 0 {
			s.minAge = years
		}
	}
}

// WithLocation sets the zone whose calendar date is "today" for the age rule. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Register validates req and stores a new registration.
// Checks run in a fixed order and the first failure wins: required fields, citizen ID
// format, birth date format, minimum age, then uniqueness.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (reg *models.Registration, err error) {
	req.Sanitize()
	subject := privacy.SubjectHash(req.CitizenID)

	ctx, span := s.tracer.Start(ctx, tracer.SpanRegister, tracer.String(tracer.AttrSubject, subject))
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrOutcome, registrationOutcome(err)))
		if err != nil && dErrors.CodeOf(err).IsRejection() {
			span.End(nil)
			return
		}
		span.End(err)
	}()

	reg, err = s.register(ctx, req)
	s.recordRegistration(err)

	switch {
	case err == nil:
		s.emit(ctx, span, audit.Event{
			Subject:  subject,
			Action:   string(audit.EventRegistrationCreated),
			Decision: audit.DecisionAccepted,
		})
		s.logger.InfoContext(ctx, "registration created",
			"citizen_id", reg.CitizenID.Redacted(),
			"request_id", requestcontext.RequestID(ctx),
		)
	case dErrors.CodeOf(err).IsRejection():
		s.emit(ctx, span, audit.Event{
			Subject:  subject,
			Action:   string(audit.EventRegistrationRejected),
			Decision: audit.DecisionRejected,
			Reason:   string(dErrors.CodeOf(err)),
		})
	}
	return reg, err
}

func (s *Service) register(ctx context.Context, req models.RegisterRequest) (*models.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	citizenID, err := domain.ParseCitizenID(req.CitizenID)
	if err != nil {
		return nil, err
	}

	birthDate, err := domain.ParseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	today := domain.Today(now, s.loc).Time()
	if domain.IsFutureDate(birthDate.Time(), today) || !domain.HasReachedAge(birthDate.Time(), today, s.minAge) {
		return nil, dErrors.New(dErrors.CodeMinimumAgeNotReached, "applicant has not reached the minimum age")
	}

	reg := &models.Registration{
		CitizenID:    citizenID,
		Name:         req.Name,
		Surname:      req.Surname,
		BirthDate:    birthDate,
		Occupation:   req.Occupation,
		PhoneNumber:  req.PhoneNumber,
		IsRisk:       req.Risk(),
		Address:      req.Address,
		VaccineTaken: []models.VaccineDose{},
		RegisteredAt: now.UTC(),
	}

	err = s.locks.WithLock(citizenID.String(), func() error {
		_, findErr := s.store.FindByCitizenID(ctx, citizenID)
		switch {
		case findErr == nil:
			return errAlreadyRegistered
		case !errors.Is(findErr, store.ErrNotFound):
			return dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to look up registration")
		}

		storeCtx, span := s.tracer.Start(ctx, tracer.SpanStoreCreate)
		createErr := s.store.Create(storeCtx, reg)
		span.End(createErr)
		if errors.Is(createErr, store.ErrConflict) {
			// Lost a race with another instance sharing the store.
			return errAlreadyRegistered
		}
		if createErr != nil {
			return dErrors.Wrap(createErr, dErrors.CodeInternal, "failed to save registration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

var errAlreadyRegistered = dErrors.New(dErrors.CodeAlreadyRegistered, "citizen ID is already registered")

// Get returns the registration for citizenID. Malformed IDs are reported as not found.
func (s *Service) Get(ctx context.Context, citizenID string) (reg *models.Registration, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGet, tracer.String(tracer.AttrSubject, privacy.SubjectHash(citizenID)))
	defer func() { span.End(ignoreNotFound(err)) }()

	id, err := domain.ParseCitizenID(citizenID)
	if err != nil {
		s.recordLookup("not_found")
		return nil, errNotFound
	}

	reg, err = s.store.FindByCitizenID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.recordLookup("not_found")
		return nil, errNotFound
	}
	if err != nil {
		s.recordLookup(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read registration")
	}
	s.recordLookup("found")
	return reg, nil
}

// Remove deletes the registration for citizenID. Malformed IDs are reported as not found.
func (s *Service) Remove(ctx context.Context, citizenID string) (err error) {
	subject := privacy.SubjectHash(citizenID)
	ctx, span := s.tracer.Start(ctx, tracer.SpanRemove, tracer.String(tracer.AttrSubject, subject))
	defer func() { span.End(ignoreNotFound(err)) }()

	id, err := domain.ParseCitizenID(citizenID)
	if err != nil {
		s.recordRemoval("not_found")
		return errNotFound
	}

	err = s.locks.WithLock(id.String(), func() error {
		return s.store.Delete(ctx, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		s.recordRemoval("not_found")
		return errNotFound
	}
	if err != nil {
		s.recordRemoval(metrics.OutcomeError)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove registration")
	}

	s.recordRemoval("removed")
	s.emit(ctx, span, audit.Event{
		Subject:  subject,
		Action:   string(audit.EventRegistrationRemoved),
		Decision: audit.DecisionGranted,
		Actor:    actorFromContext(ctx),
	})
	s.logger.InfoContext(ctx, "registration removed",
		"citizen_id", id.Redacted(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// List returns every registration ordered by citizen ID.
func (s *Service) List(ctx context.Context) (regs []*models.Registration, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList)
	defer func() { span.End(err) }()

	regs, err = s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrCount, int64(len(regs))))

	s.emit(ctx, span, audit.Event{
		Subject:  "*",
		Action:   string(audit.EventRegistrationsListed),
		Decision: audit.DecisionGranted,
		Actor:    actorFromContext(ctx),
	})
	return regs, nil
}

var errNotFound = dErrors.New(dErrors.CodeNotFound, "registration not found")

// emit publishes an audit event. Audit failures are logged and never fail the operation.
func (s *Service) emit(ctx context.Context, span tracer.Span, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx).UTC()
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
		return
	}
	span.AddEvent(tracer.EventAuditEmitted, tracer.String("audit.action", event.Action))
}

func (s *Service) recordRegistration(err error) {
	if s.metrics != nil {
		s.metrics.RecordRegistration(registrationOutcome(err))
	}
}

func (s *Service) recordLookup(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLookup(outcome)
	}
}

func (s *Service) recordRemoval(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRemoval(outcome)
	}
}

func registrationOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeCreated
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return metrics.OutcomeMissingParameter
	case dErrors.CodeInvalidCitizenID:
		return metrics.OutcomeInvalidCitizenID
	case dErrors.CodeInvalidBirthDate:
		return metrics.OutcomeInvalidBirthDate
	case dErrors.CodeMinimumAgeNotReached:
		return metrics.OutcomeMinimumAge
	case dErrors.CodeAlreadyRegistered:
		return metrics.OutcomeAlreadyRegistered
	default:
		return metrics.OutcomeError
	}
}

// actorFromContext attributes an action to the operator, or to the anonymised client IP.
func actorFromContext(ctx context.Context) string {
	if actor := adminmw.GetAdminActorID(ctx); actor != "" {
		return actor
	}
	return privacy.AnonymizeIP(requestcontext.ClientIP(ctx))
}

func ignoreNotFound(err error) error {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil
	}
	return err
}
