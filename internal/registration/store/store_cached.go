package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vaxreg/internal/registration/metrics"
	"vaxreg/internal/registration/models"
	"vaxreg/internal/registration/tracer"
	"vaxreg/pkg/domain"
	"vaxreg/pkg/platform/circuit"
)

// CachedStore is a read-through cache in front of a Primary. Writes go to the primary
// first and then invalidate the cache; cache failures are logged and counted but never
// fail the operation, because the primary is authoritative.
//
// A failed invalidation can leave a stale entry behind, so after repeated cache failures
// the breaker opens and hits are ignored until the cache has answered cleanly again.
type CachedStore struct {
	primary Primary
	cache   Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	breaker *circuit.Breaker
}

type CachedOption func(*CachedStore)

func WithCacheMetrics(m *metrics.Metrics) CachedOption {
	return func(s *CachedStore) { s.metrics = m }
}

func WithCacheTracer(t tracer.Tracer) CachedOption {
	return func(s *CachedStore) { s.tracer = t }
}

// WithCacheBreaker replaces the default breaker (5 failures to open, 3 successes to close).
func WithCacheBreaker(b *circuit.Breaker) CachedOption {
	return func(s *CachedStore) { s.breaker = b }
}

func NewCachedStore(primary Primary, cache Cache, logger *slog.Logger, opts ...CachedOption) *CachedStore {
	s := &CachedStore{
		primary: primary,
		cache:   cache,
		logger:  logger,
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.breaker == nil {
		s.breaker = circuit.New("registration-cache", circuit.OnStateChange(s.breakerChanged))
	}
	return s
}

func (s *CachedStore) Create(ctx context.Context, reg *models.Registration) error {
	if err := s.primary.Create(ctx, reg); err != nil {
		return err
	}
	// Drop any entry left over from an earlier registration of the same ID.
	s.invalidate(ctx, reg.CitizenID)
	return nil
}

func (s *CachedStore) FindByCitizenID(ctx context.Context, id domain.CitizenID) (*models.Registration, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanCacheLookup)
	reg, err := s.cache.Get(ctx, id)
	s.observe(start)
	bypassed := false
	switch {
	case err == nil:
		if s.breaker.RecordSuccess() {
			span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
			span.End(nil)
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			return reg, nil
		}
		bypassed = true
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	case errors.Is(err, ErrNotFound):
		s.breaker.RecordSuccess()
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	default:
		s.cacheFailed(ctx, "get", err)
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))
	span.End(nil)

	reg, err = s.primary.FindByCitizenID(ctx, id)
	if err != nil {
		if bypassed && errors.Is(err, ErrNotFound) {
			s.invalidate(ctx, id)
		}
		return nil, err
	}
	if err := s.cache.Set(ctx, reg); err != nil {
		s.cacheFailed(ctx, "set", err)
	} else {
		s.breaker.RecordSuccess()
	}
	return reg, nil
}

func (s *CachedStore) Delete(ctx context.Context, id domain.CitizenID) error {
	err := s.primary.Delete(ctx, id)
	// Invalidate even on ErrNotFound: another instance may have deleted the row
	// while our cache still holds it.
	s.invalidate(ctx, id)
	return err
}

func (s *CachedStore) List(ctx context.Context) ([]*models.Registration, error) {
	return s.primary.List(ctx)
}

func (s *CachedStore) invalidate(ctx context.Context, id domain.CitizenID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.cacheFailed(ctx, "delete", err)
		return
	}
	s.breaker.RecordSuccess()
}

func (s *CachedStore) cacheFailed(ctx context.Context, op string, err error) {
	s.breaker.RecordFailure()
	if s.metrics != nil {
		s.metrics.RecordCacheError(op)
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "registration cache unavailable", "op", op, "error", err)
	}
}

func (s *CachedStore) breakerChanged(name string, to circuit.State) {
	if to == circuit.StateOpen {
		s.logger.Warn("cache hits ignored until the cache recovers", "breaker", name)
		return
	}
	s.logger.Info("cache trusted again", "breaker", name)
}

func (s *CachedStore) observe(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(time.Since(start).Seconds())
	}
}
