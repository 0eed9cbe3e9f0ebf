// Package metrics provides Prometheus metrics for the registration module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RegistrationsTotal.
const (
	OutcomeCreated           = "created"
	OutcomeInvalidCitizenID  = "invalid_citizen_id"
	OutcomeInvalidBirthDate  = "invalid_birth_date"
	OutcomeMinimumAge        = "minimum_age"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeMissingParameter  = "missing_parameter"
	OutcomeError             = "error"
)

// Metrics contains the registration counters and cache instrumentation.
type Metrics struct {
	RegistrationsTotal *prometheus.CounterVec // Register attempts by outcome
	RemovalsTotal      *prometheus.CounterVec // Remove attempts by outcome (removed, not_found)
	LookupsTotal       *prometheus.CounterVec // Get attempts by outcome (found, not_found)

	CacheHitsTotal             prometheus.Counter
	CacheMissesTotal           prometheus.Counter
	CacheErrorsTotal           *prometheus.CounterVec // Cache backend failures by operation
	CacheLookupDurationSeconds prometheus.Histogram
}

// New registers metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers metrics on reg. Tests pass a fresh registry so that
// repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxreg_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),

		RemovalsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxreg_registration_removals_total",
			Help: "Registration removals by outcome",
		}, []string{"outcome"}),

		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxreg_registration_lookups_total",
			Help: "Registration lookups by outcome",
		}, []string{"outcome"}),

		CacheHitsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vaxreg_registration_cache_hits_total",
			Help: "Registration cache hits",
		}),

		CacheMissesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "vaxreg_registration_cache_misses_total",
			Help: "Registration cache misses",
		}),

		CacheErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxreg_registration_cache_errors_total",
			Help: "Registration cache backend failures by operation",
		}, []string{"op"}),

		CacheLookupDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxreg_registration_cache_lookup_duration_seconds",
			Help:    "Duration of registration cache lookups",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
		}),
	}
}

func (m *Metrics) RecordRegistration(outcome string) {
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRemoval(outcome string) {
	m.RemovalsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordCacheError(op string) {
	m.CacheErrorsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveCacheLookup(durationSeconds float64) {
	m.CacheLookupDurationSeconds.Observe(durationSeconds)
}
