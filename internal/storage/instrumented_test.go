package storage

import (
	"context"
	"testing"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedStore(t *testing.T) {
	ctx := context.Background()
	metricsManager := metrics.NewTestManager()
	store := NewInstrumentedStore(NewMemoryStore(), metricsManager)

	testStoreContract(t, store)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 3.0, testutil.ToFloat64(metricsManager.CounterStoreOps.WithLabelValues("get", "not_found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterStoreOps.WithLabelValues("get", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterStoreOps.WithLabelValues("set", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metricsManager.CounterStoreOps.WithLabelValues("delete", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metricsManager.CounterStoreOps.WithLabelValues("set", "error")))
}
