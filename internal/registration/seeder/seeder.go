// Package seeder fills a development store with demo registrations.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vaxreg/internal/registration/models"
	"vaxreg/internal/registration/store"
	"vaxreg/pkg/domain"
	"vaxreg/pkg/platform/audit"
	"vaxreg/pkg/platform/privacy"
)

// RegistrationStore is the write side of the registration store.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
}

// Seeder populates stores with demo data. Seeding is idempotent: citizens that are
// already registered are skipped, so restarting a dev server against Postgres is safe.
type Seeder struct {
	registrations RegistrationStore
	audit         audit.Store
	logger        *slog.Logger
	now           func() time.Time
}

func New(registrations RegistrationStore, auditStore audit.Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		registrations: registrations,
		audit:         auditStore,
		logger:        logger,
		now:           time.Now,
	}
}

type demoCitizen struct {
	citizenID  string
	name       string
	surname    string
	birthDate  string
	occupation string
	phone      string
	risk       bool
	address    string
	doses      []string
}

var demoCitizens = []demoCitizen{
	{"1100700000011", "Somchai", "Jaidee", "1958-03-14", "Retired", "0811111111", true, "12 Rama IV Road, Bangkok", []string{"Sinovac", "AstraZeneca"}},
	{"1100700000022", "Malee", "Srisuk", "1985-07-02", "Nurse", "0822222222", true, "45 Nimman Road, Chiang Mai", []string{"Pfizer"}},
	{"1100700000033", "Anan", "Wongsa", "1992-11-23", "Engineer", "0833333333", false, "7 Beach Road, Pattaya", nil},
	{"1100700000044", "Ploy", "Chaiyaporn", "2001-01-30", "Student", "", false, "88 Mittraphap Road, Khon Kaen", nil},
	{"1100700000055", "Kittisak", "Boonmee", "1974-05-09", "Farmer", "0855555555", true, "3 Moo 4, Nakhon Ratchasima", []string{"AstraZeneca"}},
	{"1100700000066", "Nok", "Thongdee", "2008-09-17", "Student", "", false, "21 Sukhumvit Soi 11, Bangkok", nil},
}

// SeedAll registers every demo citizen and records an audit event per registration.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	now := s.now().UTC()
	created := 0
	for i, c := range demoCitizens {
		reg, err := c.registration(now.Add(-time.Duration(len(demoCitizens)-i) * time.Hour))
		if err != nil {
			return fmt.Errorf("build demo registration %s: %w", c.citizenID, err)
		}

		if err := s.registrations.Create(ctx, reg); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return fmt.Errorf("failed to seed registrations: %w", err)
		}
		created++

		if s.audit == nil {
			continue
		}
		event := audit.Event{
			Timestamp: reg.RegisteredAt,
			Subject:   privacy.SubjectHash(reg.CitizenID.String()),
			Action:    string(audit.EventRegistrationCreated),
			Decision:  audit.DecisionAccepted,
			Actor:     "seeder",
		}
		if err := s.audit.Append(ctx, event); err != nil {
			return fmt.Errorf("failed to seed audit events: %w", err)
		}
	}

	s.logger.Info("demo data seeded successfully",
		"registrations", created,
		"skipped", len(demoCitizens)-created,
	)
	return nil
}

func (c demoCitizen) registration(registeredAt time.Time) (*models.Registration, error) {
	id, err := domain.ParseCitizenID(c.citizenID)
	if err != nil {
		return nil, err
	}
	birth, err := domain.ParseBirthDate(c.birthDate)
	if err != nil {
		return nil, err
	}

	doses := make([]models.VaccineDose, 0, len(c.doses))
	for n, vaccine := range c.doses {
		doses = append(doses, models.VaccineDose{
			Name:       vaccine,
			DoseNumber: n + 1,
			TakenAt:    registeredAt.Add(time.Duration(n+1) * 21 * 24 * time.Hour),
		})
	}

	return &models.Registration{
		CitizenID:    id,
		Name:         c.name,
		Surname:      c.surname,
		BirthDate:    birth,
		Occupation:   c.occupation,
		PhoneNumber:  c.phone,
		IsRisk:       c.risk,
		Address:      c.address,
		VaccineTaken: doses,
		RegisteredAt: registeredAt,
	}, nil
}
