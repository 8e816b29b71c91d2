package regression

import (
	"fmt"

	"github.com/ezoic/scigo/linear"
	"github.com/ezoic/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// Linear is a standard scaler followed by ordinary least squares.
type Linear struct {
	predict func(x *mat.Dense) ([]float64, error)
}

// NewLinear returns an unfitted linear pipeline.
func NewLinear() *Linear { return &Linear{} }

// Kind implements Regressor.
func (l *Linear) Kind() Kind { return KindLinear }

// Fit implements Regressor.
func (l *Linear) Fit(x [][]float64, y []float64) error {
	if err := checkTarget(x, y); err != nil {
		return err
	}
	X, err := dense(x)
	if err != nil {
		return err
	}
	Y := mat.NewDense(len(y), 1, append([]float64(nil), y...))

	scaler := preprocessing.NewStandardScaler(true, true)
	if err := scaler.Fit(X); err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	XScaled, err := scaler.Transform(X)
	if err != nil {
		return fmt.Errorf("scale features: %w", err)
	}

	model := linear.NewLinearRegression()
	if err := model.Fit(XScaled, Y); err != nil {
		return fmt.Errorf("fit linear regression: %w", err)
	}

	l.predict = func(x *mat.Dense) ([]float64, error) {
		xs, err := scaler.Transform(x)
		if err != nil {
			return nil, fmt.Errorf("scale features: %w", err)
		}
		predictions, err := model.Predict(xs)
		if err != nil {
			return nil, fmt.Errorf("linear predict: %w", err)
		}
		rows, _ := predictions.Dims()
		out := make([]float64, rows)
		for i := 0; i < rows; i++ {
			out[i] = predictions.At(i, 0)
		}
		return out, nil
	}
	return nil
}

// Predict implements Regressor.
func (l *Linear) Predict(x [][]float64) ([]float64, error) {
	if l.predict == nil {
		return nil, ErrNotFitted
	}
	X, err := dense(x)
	if err != nil {
		return nil, err
	}
	return l.predict(X)
}
