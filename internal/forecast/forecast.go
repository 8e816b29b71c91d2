// Package forecast answers interval prediction requests from a trained
// ModelSet: it picks the models for the configured strategy, scales their
// per-hour outputs to the requested interval and combines them into a total.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/training"
)

// ErrNotReady is returned until a ModelSet has been installed.
var ErrNotReady = errors.New("models are not trained yet")

// Predictor produces a forecast for an interval.
type Predictor interface {
	Predict(ctx context.Context, interval domain.Interval) (*Result, error)
}

// LocationForecast is one site's share of a Result.
type LocationForecast struct {
	Location   domain.Location `json:"-"`
	Label      string          `json:"location"`
	Value      float64         `json:"kwh"`
	Share      float64         `json:"share_pct"`
	Importance []float64       `json:"importance"`
}

// Result is a rendered prediction. Results may be shared between requests
// and must not be modified.
type Result struct {
	Interval     domain.Interval    `json:"interval"`
	Label        string             `json:"label"`
	Strategy     domain.Strategy    `json:"strategy"`
	TotalMode    domain.TotalMode   `json:"total_mode"`
	Locations    []LocationForecast `json:"locations"`
	Total        float64            `json:"total_kwh"`
	Average      float64            `json:"average_kwh"`
	Importance   []float64          `json:"importance"`
	FeatureNames []string           `json:"features"`
	InputTime    time.Time          `json:"input_time"`
	// TotalFromModel is false when the total is the sum of the locations.
	TotalFromModel bool `json:"total_from_model"`
}

// Values returns the location predictions in display order.
func (r *Result) Values() []float64 {
	out := make([]float64, len(r.Locations))
	for i, l := range r.Locations {
		out[i] = l.Value
	}
	return out
}

// Service runs predictions against the installed ModelSet.
type Service struct {
	models atomic.Pointer[training.ModelSet]
	logger *slog.Logger
}

// NewService creates a Service with no models installed.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Install makes set the active ModelSet.
func (s *Service) Install(set *training.ModelSet) {
	s.models.Store(set)
}

// Models returns the active ModelSet, or ErrNotReady.
func (s *Service) Models() (*training.ModelSet, error) {
	set := s.models.Load()
	if set == nil {
		return nil, ErrNotReady
	}
	return set, nil
}

// CheckReadiness reports whether models have been installed.
func (s *Service) CheckReadiness(_ context.Context) error {
	_, err := s.Models()
	return err
}

// Predict computes the forecast for interval. Negative model outputs are
// clamped to zero.
func (s *Service) Predict(ctx context.Context, interval domain.Interval) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	set, err := s.Models()
	if err != nil {
		return nil, err
	}

	source := domain.Hourly
	if set.Strategy == domain.StrategyAggregated {
		source = interval
	}
	im, err := set.Interval(source)
	if err != nil {
		return nil, err
	}
	scale := interval.Hours()

	res := &Result{
		Interval:     interval,
		Label:        interval.TotalLabel(),
		Strategy:     set.Strategy,
		TotalMode:    set.TotalMode,
		Locations:    make([]LocationForecast, 0, domain.NumLocations),
		Importance:   im.MeanImportance(),
		FeatureNames: domain.FeatureNames,
		InputTime:    im.LatestTime,
	}

	var sum float64
	for _, loc := range domain.Locations {
		m := im.Location(loc)
		v, err := m.Predict(im.Latest)
		if err != nil {
			return nil, err
		}
		v = clamp(v) * scale
		sum += v
		res.Locations = append(res.Locations, LocationForecast{
			Location:   loc,
			Label:      loc.Label(),
			Value:      v,
			Importance: m.Importance,
		})
	}
	res.Total = sum
	res.Average = sum / float64(domain.NumLocations)

	if set.TotalMode == domain.TotalModel {
		if im.Total == nil {
			s.logger.Warn("total model missing, falling back to summed locations", "interval", source)
		} else {
			v, err := im.Total.Predict(im.Latest)
			if err != nil {
				return nil, fmt.Errorf("total: %w", err)
			}
			res.Total = clamp(v) * scale
			res.TotalFromModel = true
		}
	}

	for i := range res.Locations {
		if res.Total > 0 {
			res.Locations[i].Share = res.Locations[i].Value / res.Total * 100
		}
	}
	return res, nil
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
