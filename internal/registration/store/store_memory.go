package store

import (
	"context"
	"sort"
	"sync"

	"vaxreg/internal/registration/models"
	"vaxreg/pkg/domain"
)

// InMemoryStore keeps registrations in a map. Used in development and tests,
// and whenever no database is configured.
type InMemoryStore struct {
	mu            sync.RWMutex
	registrations map[domain.CitizenID]*models.Registration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		registrations: make(map[domain.CitizenID]*models.Registration),
	}
}

// Create inserts reg unless its citizen ID is already present.
func (s *InMemoryStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registrations[reg.CitizenID]; exists {
		return ErrConflict
	}
	s.registrations[reg.CitizenID] = reg.Clone()
	return nil
}

func (s *InMemoryStore) FindByCitizenID(_ context.Context, id domain.CitizenID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return reg.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.CitizenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[id]; !ok {
		return ErrNotFound
	}
	delete(s.registrations, id)
	return nil
}

// List returns all registrations ordered by citizen ID.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	out := make([]*models.Registration, 0, len(s.registrations))
	for _, reg := range s.registrations {
		out = append(out, reg.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CitizenID < out[j].CitizenID })
	return out, nil
}
