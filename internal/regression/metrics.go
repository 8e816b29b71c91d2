package regression

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics summarises prediction quality on a sample:
// MAE is the average absolute error, MSE penalises large errors,
// R2 is the share of variance explained (closer to 1 is better).
type Metrics struct {
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
	N   int     `json:"n"`
}

// Evaluate compares predictions with actual values. A constant target scores
// R2 = 1 when predicted exactly and 0 otherwise.
func Evaluate(pred, actual []float64) Metrics {
	n := len(actual)
	if len(pred) < n {
		n = len(pred)
	}
	if n == 0 {
		return Metrics{}
	}
	pred, actual = pred[:n], actual[:n]

	abs := make([]float64, n)
	sq := make([]float64, n)
	for i := range actual {
		d := pred[i] - actual[i]
		abs[i] = math.Abs(d)
		sq[i] = d * d
	}
	m := Metrics{
		MAE: stat.Mean(abs, nil),
		MSE: stat.Mean(sq, nil),
		N:   n,
	}

	r2 := stat.RSquaredFrom(pred, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
		if m.MSE == 0 {
			r2 = 1
		}
	}
	m.R2 = r2
	return m
}

// Sum adds prediction vectors element-wise.
func Sum(vectors ...[]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range out {
			out[i] += v[i]
		}
	}
	return out
}
