// Package regression fits the per-location production models.
//
// Every pipeline is "scale, then regress": Forest (z-score scaler + a seeded
// ensemble of regression trees, the default), Linear (z-score scaler +
// ordinary least squares, backed by scigo) and Ridge (z-score scaler +
// L2-penalised least squares solved with gonum). Every pipeline takes
// row-major feature data; conversion to gonum matrices happens inside.
package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Kind names a pipeline implementation.
type Kind string

// Supported pipelines.
const (
	KindForest Kind = "forest"
	KindLinear Kind = "linear"
	KindRidge  Kind = "ridge"
)

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("model is not fitted")
	// ErrShape is returned for empty or ragged input.
	ErrShape = errors.New("invalid input shape")
)

// Regressor is a fitted-in-place model mapping feature rows to one target.
type Regressor interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) ([]float64, error)
	Kind() Kind
}

// FeatureImportancer is implemented by regressors that measure feature
// importance while fitting.
type FeatureImportancer interface {
	FeatureImportances() []float64
}

// Factory creates an unfitted Regressor.
type Factory func() Regressor

// Params tunes the pipelines. Each pipeline reads only its own fields.
type Params struct {
	// Alpha is the ridge penalty.
	Alpha float64
	// Trees is the forest size; zero means DefaultTrees.
	Trees int
	// Seed drives the forest's bootstrap samples.
	Seed uint64
}

// NewFactory returns a Factory for the named pipeline.
func NewFactory(kind Kind, p Params) (Factory, error) {
	switch kind {
	case KindForest:
		if p.Trees < 0 {
			return nil, fmt.Errorf("forest trees must be >= 0, got %d", p.Trees)
		}
		return func() Regressor { return NewForest(p.Trees, p.Seed) }, nil
	case KindLinear:
		return func() Regressor { return NewLinear() }, nil
	case KindRidge:
		if p.Alpha < 0 {
			return nil, fmt.Errorf("ridge alpha must be >= 0, got %g", p.Alpha)
		}
		return func() Regressor { return NewRidge(p.Alpha) }, nil
	default:
		return nil, fmt.Errorf("unknown regressor %q", kind)
	}
}

// ParseKind validates a pipeline name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindForest, KindLinear, KindRidge:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown regressor %q", s)
	}
}

// dense copies row-major data into a gonum matrix.
func dense(x [][]float64) (*mat.Dense, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, ErrShape
	}
	cols := len(x[0])
	data := make([]float64, 0, len(x)*cols)
	for i, row := range x {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(x), cols, data), nil
}

func checkTarget(x [][]float64, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d rows but %d targets", ErrShape, len(x), len(y))
	}
	return nil
}
