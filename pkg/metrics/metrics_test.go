package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_WritesBeforeInitAreDropped(t *testing.T) {
	require.NoError(t, Close())

	AddCounter(OrderCreateTotal, 1)
	SetGauge(SystemCpuuse, 50)

	assert.Nil(t, Series(OrderCreateTotal, time.Now().Add(-time.Hour), time.Now()))
	_, okl := Latest(SystemCpuuse)
	assert.False(t, okl)
}

func TestMetrics_CounterAndGaugeRoundtrip(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	t.Cleanup(func() { _ = Close() })

	AddCounter(OrderPaidTotal, 1)
	AddCounter(OrderPaidTotal, 2)
	SetGauge(ProcessMemuse, 123)

	from := time.Now().Add(-time.Minute)
	to := time.Now().Add(time.Minute)

	assert.Equal(t, int64(3), RangeSum(OrderPaidTotal, from, to))

	latest, okl := Latest(ProcessMemuse)
	require.True(t, okl)
	assert.Equal(t, int64(123), latest)
}

func TestMetrics_SeriesReturnsPoints(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	t.Cleanup(func() { _ = Close() })

	AddCounter(RevenueCents, 1999)

	points := Series(RevenueCents, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.Len(t, points, 1)
	assert.Equal(t, int64(1999), points[0].Value)
	assert.InDelta(t, time.Now().Unix(), points[0].Timestamp, 5)
}

func TestMetrics_CloseIsIdempotent(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	require.NoError(t, Close())
	require.NoError(t, Close(), "second close is a no-op")
}
