package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"vaxreg/internal/registration/metrics"
	"vaxreg/internal/registration/models"
	"vaxreg/pkg/domain"
	"vaxreg/pkg/platform/circuit"
)

// countingPrimary counts reads so tests can tell hits from misses.
type countingPrimary struct {
	*InMemoryStore
	finds int
}

func (p *countingPrimary) FindByCitizenID(ctx context.Context, id domain.CitizenID) (*models.Registration, error) {
	p.finds++
	return p.InMemoryStore.FindByCitizenID(ctx, id)
}

// brokenCache fails every operation, like an unreachable Redis.
type brokenCache struct{}

var errCacheDown = errors.New("connection refused")

func (brokenCache) Get(context.Context, domain.CitizenID) (*models.Registration, error) {
	return nil, errCacheDown
}
func (brokenCache) Set(context.Context, *models.Registration) error    { return errCacheDown }
func (brokenCache) Delete(context.Context, domain.CitizenID) error     { return errCacheDown }

// flakyCache is a working cache whose deletes can be made to fail.
type flakyCache struct {
	*LocalCache
	failDeletes bool
}

func (c *flakyCache) Delete(ctx context.Context, id domain.CitizenID) error {
	if c.failDeletes {
		return errCacheDown
	}
	return c.LocalCache.Delete(ctx, id)
}

type CachedStoreSuite struct {
	suite.Suite
	ctx     context.Context
	primary *countingPrimary
	cache   *LocalCache
	metrics *metrics.Metrics
	store   *CachedStore
}

func TestCachedStoreSuite(t *testing.T) {
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.primary = &countingPrimary{InMemoryStore: NewInMemoryStore()}
	s.cache = NewLocalCache(time.Minute)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.store = NewCachedStore(s.primary, s.cache, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithCacheMetrics(s.metrics))
}

func (s *CachedStoreSuite) TestReadThrough() {
	reg := newRegistration("1234567890123")
	s.Require().NoError(s.store.Create(s.ctx, reg))

	_, err := s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Require().NoError(err)
	_, err = s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Require().NoError(err)

	s.Equal(1, s.primary.finds, "second read served from cache")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheHitsTotal))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheMissesTotal))
}

func (s *CachedStoreSuite) TestMissIsNotCached() {
	_, err := s.store.FindByCitizenID(s.ctx, "1234567890123")
	s.ErrorIs(err, ErrNotFound)

	s.Require().NoError(s.store.Create(s.ctx, newRegistration("1234567890123")))
	_, err = s.store.FindByCitizenID(s.ctx, "1234567890123")
	s.NoError(err)
}

func (s *CachedStoreSuite) TestDeleteInvalidates() {
	reg := newRegistration("1234567890123")
	s.Require().NoError(s.store.Create(s.ctx, reg))
	_, _ = s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Equal(1, s.cache.Len())

	s.Require().NoError(s.store.Delete(s.ctx, reg.CitizenID))
	s.Equal(0, s.cache.Len())

	_, err := s.store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CachedStoreSuite) TestDeleteInvalidatesWhenPrimaryAlreadyEmpty() {
	reg := newRegistration("1234567890123")
	s.Require().NoError(s.cache.Set(s.ctx, reg))

	s.ErrorIs(s.store.Delete(s.ctx, reg.CitizenID), ErrNotFound)
	s.Equal(0, s.cache.Len())
}

func (s *CachedStoreSuite) TestDuplicateCreatePassesThrough() {
	reg := newRegistration("1234567890123")
	s.Require().NoError(s.store.Create(s.ctx, reg))
	s.ErrorIs(s.store.Create(s.ctx, reg), ErrConflict)
}

func (s *CachedStoreSuite) TestBrokenCacheDegradesToPrimary() {
	store := NewCachedStore(s.primary, brokenCache{}, nil, WithCacheMetrics(s.metrics))
	reg := newRegistration("1234567890123")

	s.Require().NoError(store.Create(s.ctx, reg))
	found, err := store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Require().NoError(err)
	s.Equal(reg.CitizenID, found.CitizenID)
	s.Require().NoError(store.Delete(s.ctx, reg.CitizenID))

	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheErrorsTotal.WithLabelValues("get")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheErrorsTotal.WithLabelValues("set")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.CacheErrorsTotal.WithLabelValues("delete")))
}

func (s *CachedStoreSuite) TestStaleEntryIgnoredWhileBreakerOpen() {
	cache := &flakyCache{LocalCache: NewLocalCache(time.Minute)}
	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(2))
	store := NewCachedStore(s.primary, cache, nil, WithCacheBreaker(breaker))
	reg := newRegistration("1234567890123")

	s.Require().NoError(store.Create(s.ctx, reg))
	_, err := store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.Require().NoError(err)

	cache.failDeletes = true
	s.Require().NoError(store.Delete(s.ctx, reg.CitizenID))
	s.True(breaker.IsOpen(), "failed invalidation opens the breaker")
	s.Equal(1, cache.Len(), "stale entry left behind")

	cache.failDeletes = false
	_, err = store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.ErrorIs(err, ErrNotFound, "stale hit is not served")
	s.Equal(0, cache.Len(), "stale entry evicted")
	s.False(breaker.IsOpen())

	_, err = store.FindByCitizenID(s.ctx, reg.CitizenID)
	s.ErrorIs(err, ErrNotFound)
}
