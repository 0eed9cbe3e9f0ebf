package redis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxreg/internal/platform/config"
)

func TestNew_EmptyURLDisablesClient(t *testing.T) {
	c, err := New(context.Background(), config.Redis{}, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNew_RejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.Redis{URL: "not-a-url"}, nil)
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestAddDelta(t *testing.T) {
	m := newPoolMetrics(prometheus.NewRegistry())

	addDelta(m.hits, 5, 0)
	addDelta(m.hits, 8, 5)
	addDelta(m.hits, 3, 8)

	assert.InDelta(t, 8, testutil.ToFloat64(m.hits), 0.0001)
}
