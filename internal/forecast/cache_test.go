package forecast

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingPredictor struct {
	calls int
	err   error
}

func (m *countingPredictor) Predict(_ context.Context, interval domain.Interval) (*Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &Result{Interval: interval, Label: interval.TotalLabel()}, nil
}

// --- CachedPredictor tests ---

func TestCachedPredictor_Hit(t *testing.T) {
	inner := &countingPredictor{}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedPredictor(inner, 4, metrics)

	r1, err := cached.Predict(context.Background(), domain.Daily)
	require.NoError(t, err)
	r2, err := cached.Predict(context.Background(), domain.Daily)
	require.NoError(t, err)

	assert.Same(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ForecastCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.ForecastCache.WithLabelValues("miss")), 0)
}

func TestCachedPredictor_DifferentIntervalsMiss(t *testing.T) {
	inner := &countingPredictor{}
	cached := NewCachedPredictor(inner, 4, observability.NewMetricsForTesting())

	_, _ = cached.Predict(context.Background(), domain.Hourly)
	_, _ = cached.Predict(context.Background(), domain.Monthly)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedPredictor_ErrorsNotCached(t *testing.T) {
	inner := &countingPredictor{err: errors.New("boom")}
	cached := NewCachedPredictor(inner, 4, observability.NewMetricsForTesting())

	_, err := cached.Predict(context.Background(), domain.Hourly)
	require.Error(t, err)

	inner.err = nil
	res, err := cached.Predict(context.Background(), domain.Hourly)
	require.NoError(t, err)
	assert.Equal(t, domain.Hourly, res.Interval)
	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.put("a", 1)
	c.put("b", 2)
	c.get("a")
	c.put("c", 3)

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.put("a", 1)
	c.put("a", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.len())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-3.2))
	assert.Equal(t, 4.5, clamp(4.5))
}
