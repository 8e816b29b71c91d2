package regression

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// zscore holds per-column standardisation parameters.
type zscore struct {
	mean []float64
	std  []float64
}

func fitZScore(x *mat.Dense) zscore {
	r, c := x.Dims()
	z := zscore{mean: make([]float64, c), std: make([]float64, c)}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		// Constant columns carry no signal; leave them centred at zero.
		if std < 1e-10 || math.IsNaN(std) {
			std = 1
		}
		z.mean[j] = mean
		z.std[j] = std
	}
	return z
}

func (z zscore) transform(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - z.mean[j]) / z.std[j]
	}, x)
	return out
}
