package forecast_test

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/forecast"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// measurements returns hourly readings with production linear in GHI. The
// last reading has GHI 500, so hourly predictions are 35, 15 and 60 kWh.
func measurements(days int) []domain.Measurement {
	rng := rand.New(rand.NewPCG(1, 2))
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	n := days * 24
	out := make([]domain.Measurement, 0, n)
	for h := 0; h < n; h++ {
		f := domain.Features{
			AirTemperature: rng.Float64() * 30,
			CloudOpacity:   rng.Float64() * 100,
			DHI:            rng.Float64() * 200,
			DNI:            rng.Float64() * 800,
			EBH:            rng.Float64() * 600,
			GHI:            rng.Float64() * 1000,
		}
		if h == n-1 {
			f.GHI = 500
		}
		m := domain.Measurement{Time: start.Add(time.Duration(h) * time.Hour), Features: f}
		m.Production[0] = 10 + 0.05*f.GHI
		m.Production[1] = 5 + 0.02*f.GHI
		m.Production[2] = 20 + 0.08*f.GHI
		out = append(out, m)
	}
	return out
}

func trainedService(t *testing.T, days int, strategy domain.Strategy, mode domain.TotalMode) *forecast.Service {
	t.Helper()
	factory, err := regression.NewFactory(regression.KindRidge, regression.Params{})
	require.NoError(t, err)

	opts := training.DefaultOptions()
	opts.Strategy = strategy
	opts.TotalMode = mode
	set, err := training.NewTrainer(factory, opts, slog.Default()).Train(measurements(days))
	require.NoError(t, err)

	svc := forecast.NewService(slog.Default())
	svc.Install(set)
	return svc
}

func TestService_NotReady(t *testing.T) {
	svc := forecast.NewService(slog.Default())

	require.ErrorIs(t, svc.CheckReadiness(context.Background()), forecast.ErrNotReady)
	_, err := svc.Predict(context.Background(), domain.Hourly)
	require.ErrorIs(t, err, forecast.ErrNotReady)
}

func TestService_ScaledStrategy(t *testing.T) {
	svc := trainedService(t, 3, domain.StrategyScaled, domain.TotalSum)
	require.NoError(t, svc.CheckReadiness(context.Background()))

	tests := []struct {
		interval domain.Interval
		factor   float64
	}{
		{domain.Hourly, 1},
		{domain.Daily, 24},
		{domain.Monthly, 720},
	}
	for _, tt := range tests {
		t.Run(tt.interval.String(), func(t *testing.T) {
			res, err := svc.Predict(context.Background(), tt.interval)
			require.NoError(t, err)

			assert.Equal(t, tt.interval.TotalLabel(), res.Label)
			require.Len(t, res.Locations, domain.NumLocations)
			assert.InDeltaSlice(t, []float64{35 * tt.factor, 15 * tt.factor, 60 * tt.factor}, res.Values(), 1e-6)
			assert.InDelta(t, 110*tt.factor, res.Total, 1e-6)
			assert.InDelta(t, 110*tt.factor/3, res.Average, 1e-6)
			assert.False(t, res.TotalFromModel)

			var share float64
			for _, l := range res.Locations {
				share += l.Share
			}
			assert.InDelta(t, 100.0, share, 1e-9)
		})
	}
}

func TestService_TotalModel(t *testing.T) {
	svc := trainedService(t, 3, domain.StrategyScaled, domain.TotalModel)

	res, err := svc.Predict(context.Background(), domain.Daily)
	require.NoError(t, err)
	assert.True(t, res.TotalFromModel)
	assert.InDelta(t, 110*24.0, res.Total, 1e-6)
}

func TestService_TotalModelMissingFallsBackToSum(t *testing.T) {
	factory, err := regression.NewFactory(regression.KindRidge, regression.Params{})
	require.NoError(t, err)
	set, err := training.NewTrainer(factory, training.DefaultOptions(), slog.Default()).Train(measurements(3))
	require.NoError(t, err)

	// Trained without total models, then asked for them.
	set.TotalMode = domain.TotalModel
	hourly, err := set.Interval(domain.Hourly)
	require.NoError(t, err)
	require.Nil(t, hourly.Total)

	svc := forecast.NewService(slog.Default())
	svc.Install(set)

	res, err := svc.Predict(context.Background(), domain.Daily)
	require.NoError(t, err)
	assert.False(t, res.TotalFromModel)
	assert.Equal(t, domain.TotalModel, res.TotalMode)
	assert.InDelta(t, 110*24.0, res.Total, 1e-6)
	assert.InDelta(t, res.Values()[0]+res.Values()[1]+res.Values()[2], res.Total, 1e-9)
}

func TestService_AggregatedStrategy(t *testing.T) {
	svc := trainedService(t, 20, domain.StrategyAggregated, domain.TotalSum)

	res, err := svc.Predict(context.Background(), domain.Daily)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyAggregated, res.Strategy)
	assert.Equal(t, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), res.InputTime)
	for _, v := range res.Values() {
		assert.Greater(t, v, 0.0)
	}

	// Twenty days fall into a single month, below the training minimum.
	_, err = svc.Predict(context.Background(), domain.Monthly)
	require.ErrorIs(t, err, training.ErrIntervalUnavailable)
}

func TestService_Importance(t *testing.T) {
	svc := trainedService(t, 3, domain.StrategyScaled, domain.TotalSum)

	res, err := svc.Predict(context.Background(), domain.Hourly)
	require.NoError(t, err)

	assert.Equal(t, domain.FeatureNames, res.FeatureNames)
	require.Len(t, res.Importance, domain.NumFeatures)
	assert.InDelta(t, 1.0, res.Importance[5], 1e-6, "production depends only on GHI")
	for _, l := range res.Locations {
		assert.Len(t, l.Importance, domain.NumFeatures)
	}
}

func TestService_CancelledContext(t *testing.T) {
	svc := trainedService(t, 3, domain.StrategyScaled, domain.TotalSum)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Predict(ctx, domain.Hourly)
	require.ErrorIs(t, err, context.Canceled)
}
