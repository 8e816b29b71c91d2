// Package training fits the per-interval, per-location production models at
// startup and evaluates them on a held-out split.
package training

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
)

// Options controls what gets trained and how it is evaluated.
type Options struct {
	Strategy  domain.Strategy
	TotalMode domain.TotalMode
	TestRatio float64
	Seed      uint64
	MinRows   int
}

// DefaultOptions mirrors the service defaults.
func DefaultOptions() Options {
	return Options{
		Strategy:  domain.StrategyScaled,
		TotalMode: domain.TotalSum,
		TestRatio: 0.2,
		Seed:      42,
		MinRows:   10,
	}
}

// Intervals returns the intervals the strategy needs models for. Hourly is
// always included.
func (o Options) Intervals() []domain.Interval {
	if o.Strategy == domain.StrategyAggregated {
		return domain.Intervals
	}
	return []domain.Interval{domain.Hourly}
}

// Trainer fits a ModelSet from cleaned measurements.
type Trainer struct {
	factory regression.Factory
	opts    Options
	logger  *slog.Logger
}

// NewTrainer creates a Trainer that builds regressors with factory.
func NewTrainer(factory regression.Factory, opts Options, logger *slog.Logger) *Trainer {
	return &Trainer{factory: factory, opts: opts, logger: logger}
}

// Train fits every model the options call for. An interval with fewer than
// MinRows rows is skipped and later reports ErrIntervalUnavailable; too few
// hourly rows fails the whole run.
func (t *Trainer) Train(measurements []domain.Measurement) (*ModelSet, error) {
	start := domain.Now()
	set := &ModelSet{
		Kind:      t.factory().Kind(),
		Strategy:  t.opts.Strategy,
		TotalMode: t.opts.TotalMode,
		intervals: make(map[domain.Interval]*IntervalModels),
	}

	for _, interval := range t.opts.Intervals() {
		rows, err := domain.GroupByInterval(measurements, interval)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", interval, err)
		}
		if len(rows) < t.opts.MinRows {
			if interval == domain.Hourly {
				return nil, fmt.Errorf("need at least %d hourly rows to train, have %d", t.opts.MinRows, len(rows))
			}
			t.logger.Warn("skipping interval with too few rows",
				"interval", interval, "rows", len(rows), "min_rows", t.opts.MinRows)
			continue
		}

		im, err := t.trainInterval(interval, rows)
		if err != nil {
			return nil, err
		}
		set.intervals[interval] = im
	}

	set.TrainedAt = domain.Now()
	set.Duration = set.TrainedAt.Sub(start)
	t.logger.Info("training complete",
		"regressor", set.Kind,
		"intervals", len(set.intervals),
		"duration", set.Duration)
	return set, nil
}

func (t *Trainer) trainInterval(interval domain.Interval, rows []domain.Measurement) (*IntervalModels, error) {
	x := domain.FeatureMatrix(rows)
	last := rows[len(rows)-1]
	im := &IntervalModels{
		Interval:   interval,
		Rows:       len(rows),
		Latest:     last.Features.Row(),
		LatestTime: last.Time,
	}

	for _, loc := range domain.Locations {
		m, err := t.fit(interval, loc, x, domain.Target(rows, loc))
		if err != nil {
			return nil, err
		}
		im.Locations[loc.Index()] = m
	}

	// Every target shares the partition because the row count and seed match.
	total := regression.TrainTestSplit(x, domain.Target(rows, domain.Total), t.opts.TestRatio, t.opts.Seed)
	evalX, evalY := heldOut(total)
	preds := make([][]float64, 0, domain.NumLocations)
	for _, m := range im.Locations {
		p, err := m.regressor.Predict(evalX)
		if err != nil {
			return nil, fmt.Errorf("evaluate summed total %s: %w", interval, err)
		}
		preds = append(preds, p)
	}
	im.SummedTotal = regression.Evaluate(regression.Sum(preds...), evalY)
	t.logger.Info("summed total evaluated",
		"interval", interval,
		"mae", im.SummedTotal.MAE,
		"mse", im.SummedTotal.MSE,
		"r2", im.SummedTotal.R2)

	if t.opts.TotalMode == domain.TotalModel {
		m, err := t.fit(interval, domain.Total, x, domain.Target(rows, domain.Total))
		if err != nil {
			return nil, err
		}
		im.Total = m
	}
	return im, nil
}

func (t *Trainer) fit(interval domain.Interval, target domain.Location, x [][]float64, y []float64) (*Model, error) {
	split := regression.TrainTestSplit(x, y, t.opts.TestRatio, t.opts.Seed)

	r := t.factory()
	if err := r.Fit(split.TrainX, split.TrainY); err != nil {
		return nil, fmt.Errorf("fit %s %s: %w", interval, target.Label(), err)
	}

	evalX, evalY := heldOut(split)
	pred, err := r.Predict(evalX)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s %s: %w", interval, target.Label(), err)
	}

	importance, err := featureImportance(r, split)
	if err != nil {
		return nil, fmt.Errorf("importance %s %s: %w", interval, target.Label(), err)
	}

	m := &Model{
		Interval:   interval,
		Target:     target,
		Label:      target.Label(),
		Kind:       r.Kind(),
		Metrics:    regression.Evaluate(pred, evalY),
		Importance: importance,
		TrainRows:  len(split.TrainX),
		regressor:  r,
	}
	t.logger.Info("model trained",
		"interval", interval,
		"target", m.Label,
		"train_rows", m.TrainRows,
		"test_rows", m.Metrics.N,
		"mae", m.Metrics.MAE,
		"mse", m.Metrics.MSE,
		"r2", m.Metrics.R2)
	return m, nil
}

// featureImportance prefers what the regressor measured while fitting and
// falls back to mean ablation on the training rows.
func featureImportance(r regression.Regressor, s regression.Split) ([]float64, error) {
	if fi, ok := r.(regression.FeatureImportancer); ok {
		return fi.FeatureImportances(), nil
	}
	importance, err := regression.Importance(r, s.TrainX, s.TrainY)
	if err != nil && !errors.Is(err, regression.ErrShape) {
		return nil, err
	}
	return importance, nil
}

// heldOut returns the test rows, or the training rows when the split held
// nothing out.
func heldOut(s regression.Split) ([][]float64, []float64) {
	if len(s.TestX) == 0 {
		return s.TrainX, s.TrainY
	}
	return s.TestX, s.TestY
}
