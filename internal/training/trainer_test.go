package training_test

import (
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainedAt = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// syntheticMeasurements returns hourly readings whose production is an exact
// linear function of GHI and air temperature.
func syntheticMeasurements(days int) []domain.Measurement {
	rng := rand.New(rand.NewPCG(42, 0))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Measurement, 0, days*24)
	for h := 0; h < days*24; h++ {
		f := domain.Features{
			AirTemperature: rng.Float64()*30 - 5,
			CloudOpacity:   rng.Float64() * 100,
			DHI:            rng.Float64() * 200,
			DNI:            rng.Float64() * 800,
			EBH:            rng.Float64() * 600,
			GHI:            rng.Float64() * 1000,
		}
		m := domain.Measurement{Time: start.Add(time.Duration(h) * time.Hour), Features: f}
		m.Production[0] = 10 + 0.05*f.GHI
		m.Production[1] = 5 + 0.02*f.GHI + 0.1*f.AirTemperature
		m.Production[2] = 20 + 0.08*f.GHI
		out = append(out, m)
	}
	return out
}

func newTrainer(t *testing.T, opts training.Options) *training.Trainer {
	t.Helper()
	factory, err := regression.NewFactory(regression.KindRidge, regression.Params{})
	require.NoError(t, err)
	return training.NewTrainer(factory, opts, slog.Default())
}

func TestTrain_ScaledTrainsHourlyOnly(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(trainedAt))
	defer domain.SetClock(nil)

	ms := syntheticMeasurements(3)
	set, err := newTrainer(t, training.DefaultOptions()).Train(ms)
	require.NoError(t, err)

	assert.Equal(t, trainedAt, set.TrainedAt)
	assert.Zero(t, set.Duration, "duration is measured on the package clock")
	assert.Equal(t, regression.KindRidge, set.Kind)
	assert.Equal(t, domain.StrategyScaled, set.Strategy)

	hourly, err := set.Interval(domain.Hourly)
	require.NoError(t, err)
	assert.Equal(t, len(ms), hourly.Rows)
	assert.Equal(t, ms[len(ms)-1].Features.Row(), hourly.Latest)
	assert.Nil(t, hourly.Total)

	for _, m := range hourly.Locations {
		assert.Greater(t, m.Metrics.R2, 0.999, m.Label)
		assert.Equal(t, 15, m.Metrics.N, "ceil(72*0.2) held-out rows")
		assert.Equal(t, 57, m.TrainRows)
		assert.Len(t, m.Importance, domain.NumFeatures)
	}
	assert.Greater(t, hourly.SummedTotal.R2, 0.999)

	_, err = set.Interval(domain.Daily)
	require.ErrorIs(t, err, training.ErrIntervalUnavailable)
	assert.Len(t, set.Models(), domain.NumLocations)
}

func TestTrain_ImportanceFollowsSignal(t *testing.T) {
	set, err := newTrainer(t, training.DefaultOptions()).Train(syntheticMeasurements(3))
	require.NoError(t, err)

	hourly, err := set.Interval(domain.Hourly)
	require.NoError(t, err)

	// Location 1 depends only on GHI.
	imp := hourly.Location(domain.Location1).Importance
	assert.InDelta(t, 1.0, imp[5], 1e-6)

	mean := hourly.MeanImportance()
	require.Len(t, mean, domain.NumFeatures)
	var sum float64
	for _, v := range mean {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTrain_AggregatedWithTotalModel(t *testing.T) {
	opts := training.DefaultOptions()
	opts.Strategy = domain.StrategyAggregated
	opts.TotalMode = domain.TotalModel

	set, err := newTrainer(t, opts).Train(syntheticMeasurements(40))
	require.NoError(t, err)

	daily, err := set.Interval(domain.Daily)
	require.NoError(t, err)
	assert.Equal(t, 40, daily.Rows)
	require.NotNil(t, daily.Total)
	assert.Equal(t, "Total", daily.Total.Label)
	assert.Equal(t, time.Date(2024, time.February, 9, 0, 0, 0, 0, time.UTC), daily.LatestTime)

	// 40 days span two months, below the default minimum of 10 rows.
	_, err = set.Interval(domain.Monthly)
	require.ErrorIs(t, err, training.ErrIntervalUnavailable)

	intervals := set.Intervals()
	require.Len(t, intervals, 2)
	assert.Equal(t, domain.Hourly, intervals[0].Interval)
	assert.Equal(t, domain.Daily, intervals[1].Interval)
	assert.Len(t, set.Models(), 2*(domain.NumLocations+1))
}

func TestTrain_TooFewHourlyRows(t *testing.T) {
	_, err := newTrainer(t, training.DefaultOptions()).Train(syntheticMeasurements(1)[:5])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly rows")
}

func TestModel_Predict(t *testing.T) {
	set, err := newTrainer(t, training.DefaultOptions()).Train(syntheticMeasurements(2))
	require.NoError(t, err)
	hourly, err := set.Interval(domain.Hourly)
	require.NoError(t, err)

	row := domain.Features{GHI: 500}.Row()
	got, err := hourly.Location(domain.Location3).Predict(row)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, got, 1e-6)
}

func TestTrain_ForestUsesImpurityImportance(t *testing.T) {
	factory, err := regression.NewFactory(regression.KindForest, regression.Params{Trees: 10, Seed: 42})
	require.NoError(t, err)

	set, err := training.NewTrainer(factory, training.DefaultOptions(), slog.Default()).Train(syntheticMeasurements(3))
	require.NoError(t, err)
	assert.Equal(t, regression.KindForest, set.Kind)

	hourly, err := set.Interval(domain.Hourly)
	require.NoError(t, err)
	for _, m := range hourly.Locations {
		require.Len(t, m.Importance, domain.NumFeatures)
		var sum float64
		for _, v := range m.Importance {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, m.Label)
	}
	// Location 1 depends only on GHI.
	imp := hourly.Location(domain.Location1).Importance
	for j, v := range imp {
		if j != 5 {
			assert.Greater(t, imp[5], v)
		}
	}
}
