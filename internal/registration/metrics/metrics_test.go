package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRegistration(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordRegistration(OutcomeCreated)
	m.RecordRegistration(OutcomeCreated)
	m.RecordRegistration(OutcomeAlreadyRegistered)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues(OutcomeAlreadyRegistered)))
}

func TestCacheCounters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()
	m.RecordCacheError("get")
	m.ObserveCacheLookup(0.002)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheErrorsTotal.WithLabelValues("get")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CacheLookupDurationSeconds))
}
