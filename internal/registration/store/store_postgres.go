package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"vaxreg/internal/registration/models"
	"vaxreg/pkg/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// PostgresStore persists registrations in the registrations table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts reg. ON CONFLICT DO NOTHING makes the duplicate check atomic with the
// insert; zero affected rows means the citizen ID was already registered.
func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	doses, err := json.Marshal(nonNilDoses(reg.VaccineTaken))
	if err != nil {
		return fmt.Errorf("encode vaccine_taken: %w", err)
	}
	query := `
		INSERT INTO registrations (
			citizen_id, name, surname, birth_date, occupation, phone_number, is_risk, address, vaccine_taken, registered_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (citizen_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		reg.CitizenID.String(),
		reg.Name,
		reg.Surname,
		reg.BirthDate.Time(),
		reg.Occupation,
		reg.PhoneNumber,
		reg.IsRisk,
		reg.Address,
		doses,
		reg.RegisteredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert registration rows affected: %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByCitizenID(ctx context.Context, id domain.CitizenID) (*models.Registration, error) {
	query := `
		SELECT citizen_id, name, surname, birth_date, occupation, phone_number, is_risk, address, vaccine_taken, registered_at
		FROM registrations
		WHERE citizen_id = $1
	`
	reg, err := scanRegistration(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.CitizenID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE citizen_id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Registration, error) {
	query := `
		SELECT citizen_id, name, surname, birth_date, occupation, phone_number, is_risk, address, vaccine_taken, registered_at
		FROM registrations
		ORDER BY citizen_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	out := []*models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

type registrationRow interface {
	Scan(dest ...any) error
}

func scanRegistration(row registrationRow) (*models.Registration, error) {
	var (
		reg       models.Registration
		citizenID string
		birthDate time.Time
		doses     []byte
	)
	if err := row.Scan(&citizenID, &reg.Name, &reg.Surname, &birthDate, &reg.Occupation,
		&reg.PhoneNumber, &reg.IsRisk, &reg.Address, &doses, &reg.RegisteredAt); err != nil {
		return nil, err
	}
	reg.CitizenID = domain.CitizenID(citizenID)
	reg.BirthDate = domain.NewBirthDate(birthDate)
	if err := json.Unmarshal(doses, &reg.VaccineTaken); err != nil {
		return nil, fmt.Errorf("decode vaccine_taken: %w", err)
	}
	reg.VaccineTaken = nonNilDoses(reg.VaccineTaken)
	return &reg, nil
}

func nonNilDoses(d []models.VaccineDose) []models.VaccineDose {
	if d == nil {
		return []models.VaccineDose{}
	}
	return d
}
