// Package store persists registrations. Every backend enforces the one-record-per-citizen
// rule itself, so uniqueness holds even when several service instances share a database.
package store

import (
	"context"

	"vaxreg/internal/registration/models"
	"vaxreg/internal/sentinel"
	"vaxreg/pkg/domain"
)

var (
	// ErrNotFound is returned when no registration exists for the citizen ID.
	ErrNotFound = sentinel.ErrNotFound
	// ErrConflict is returned by Create when the citizen ID is already registered.
	ErrConflict = sentinel.ErrConflict
)

// Primary is the system of record that CachedStore fronts.
type Primary interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByCitizenID(ctx context.Context, id domain.CitizenID) (*models.Registration, error)
	Delete(ctx context.Context, id domain.CitizenID) error
	List(ctx context.Context) ([]*models.Registration, error)
}

// Cache is a best-effort read cache. Get returns ErrNotFound on a miss.
type Cache interface {
	Get(ctx context.Context, id domain.CitizenID) (*models.Registration, error)
	Set(ctx context.Context, reg *models.Registration) error
	Delete(ctx context.Context, id domain.CitizenID) error
}
