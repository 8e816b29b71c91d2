package training

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/regression"
)

// ErrIntervalUnavailable is returned when no models were trained for an
// interval, either because the strategy does not need them or because the
// dataset had too few rows.
var ErrIntervalUnavailable = errors.New("no models trained for interval")

// Model is one fitted regressor together with its held-out evaluation.
type Model struct {
	Interval   domain.Interval    `json:"interval"`
	Target     domain.Location    `json:"-"`
	Label      string             `json:"target"`
	Kind       regression.Kind    `json:"regressor"`
	Metrics    regression.Metrics `json:"metrics"`
	Importance []float64          `json:"importance"`
	TrainRows  int                `json:"train_rows"`

	regressor regression.Regressor
}

// Predict runs a single feature row through the model.
func (m *Model) Predict(row []float64) (float64, error) {
	out, err := m.regressor.Predict([][]float64{row})
	if err != nil {
		return 0, fmt.Errorf("predict %s %s: %w", m.Interval, m.Label, err)
	}
	return out[0], nil
}

// IntervalModels holds every model trained on one interval's matrix.
type IntervalModels struct {
	Interval domain.Interval `json:"interval"`
	Rows     int             `json:"rows"`
	// Locations is indexed by Location.Index.
	Locations [domain.NumLocations]*Model `json:"locations"`
	// Total is nil unless the total mode is TotalModel.
	Total *Model `json:"total,omitempty"`
	// SummedTotal scores the sum of the location predictions against the
	// actual total on the held-out rows.
	SummedTotal regression.Metrics `json:"summed_total"`
	// Latest is the most recent feature row, the input for predictions.
	Latest     []float64 `json:"latest"`
	LatestTime time.Time `json:"latest_time"`
}

// Location returns the model for loc.
func (im *IntervalModels) Location(loc domain.Location) *Model {
	return im.Locations[loc.Index()]
}

// MeanImportance averages the location models' feature importances.
func (im *IntervalModels) MeanImportance() []float64 {
	vectors := make([][]float64, 0, domain.NumLocations)
	for _, m := range im.Locations {
		vectors = append(vectors, m.Importance)
	}
	return regression.MeanImportance(vectors...)
}

// ModelSet is the read-only result of a training run.
type ModelSet struct {
	Kind      regression.Kind  `json:"regressor"`
	Strategy  domain.Strategy  `json:"strategy"`
	TotalMode domain.TotalMode `json:"total_mode"`
	TrainedAt time.Time        `json:"trained_at"`
	Duration  time.Duration    `json:"-"`

	intervals map[domain.Interval]*IntervalModels
}

// Interval returns the models trained for i.
func (s *ModelSet) Interval(i domain.Interval) (*IntervalModels, error) {
	im, ok := s.intervals[i]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntervalUnavailable, i)
	}
	return im, nil
}

// Intervals lists the trained intervals in display order.
func (s *ModelSet) Intervals() []*IntervalModels {
	out := make([]*IntervalModels, 0, len(s.intervals))
	for _, i := range domain.Intervals {
		if im, ok := s.intervals[i]; ok {
			out = append(out, im)
		}
	}
	return out
}

// Models flattens every trained model, location models first within each
// interval.
func (s *ModelSet) Models() []*Model {
	var out []*Model
	for _, im := range s.Intervals() {
		out = append(out, im.Locations[:]...)
		if im.Total != nil {
			out = append(out, im.Total)
		}
	}
	return out
}
