package regression

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Importance scores each feature by how much the model's mean squared error
// grows when that feature is replaced by its mean. Scores are normalised to
// sum to 1; a model that ignores every feature scores all zeros.
func Importance(r Regressor, x [][]float64, y []float64) ([]float64, error) {
	if err := checkTarget(x, y); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrShape
	}

	base, err := r.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("baseline predict: %w", err)
	}
	baseMSE := Evaluate(base, y).MSE

	cols := len(x[0])
	scores := make([]float64, cols)
	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		mean := stat.Mean(col, nil)

		ablated := make([][]float64, len(x))
		for i, row := range x {
			cp := append([]float64(nil), row...)
			cp[j] = mean
			ablated[i] = cp
		}
		pred, err := r.Predict(ablated)
		if err != nil {
			return nil, fmt.Errorf("ablate feature %d: %w", j, err)
		}
		if delta := Evaluate(pred, y).MSE - baseMSE; delta > 0 {
			scores[j] = delta
		}
	}
	return Normalize(scores), nil
}

// Normalize scales non-negative weights to sum to 1. All-zero input is
// returned as zeros.
func Normalize(w []float64) []float64 {
	out := make([]float64, len(w))
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		return out
	}
	for i, v := range w {
		out[i] = v / sum
	}
	return out
}

// MeanImportance averages importance vectors element-wise.
func MeanImportance(vectors ...[]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range out {
			if i < len(v) {
				out[i] += v[i]
			}
		}
	}
	for i := range out {
		out[i] /= float64(len(vectors))
	}
	return out
}
