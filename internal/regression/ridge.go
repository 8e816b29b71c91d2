package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Ridge is a z-score scaler followed by L2-penalised least squares. The
// penalty is applied by augmenting the scaled design matrix with sqrt(alpha)*I
// rows and solving the stacked system with a QR factorisation, so alpha = 0
// reduces to ordinary least squares.
type Ridge struct {
	alpha     float64
	scale     zscore
	coef      *mat.VecDense
	intercept float64
	fitted    bool
}

// NewRidge returns an unfitted ridge pipeline with penalty alpha.
func NewRidge(alpha float64) *Ridge { return &Ridge{alpha: alpha} }

// Kind implements Regressor.
func (r *Ridge) Kind() Kind { return KindRidge }

// Fit implements Regressor.
func (r *Ridge) Fit(x [][]float64, y []float64) error {
	if err := checkTarget(x, y); err != nil {
		return err
	}
	X, err := dense(x)
	if err != nil {
		return err
	}
	n, p := X.Dims()

	scale := fitZScore(X)
	Xs := scale.transform(X)
	yMean := stat.Mean(y, nil)

	// Stack [Xs; sqrt(alpha) I] over [y - mean; 0].
	A := mat.NewDense(n+p, p, nil)
	A.Slice(0, n, 0, p).(*mat.Dense).Copy(Xs)
	penalty := math.Sqrt(r.alpha)
	for j := 0; j < p; j++ {
		A.Set(n+j, j, penalty)
	}
	b := mat.NewDense(n+p, 1, nil)
	for i, v := range y {
		b.Set(i, 0, v-yMean)
	}

	var qr mat.QR
	qr.Factorize(A)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, b); err != nil {
		return fmt.Errorf("solve ridge system: %w", err)
	}

	r.scale = scale
	r.coef = mat.NewVecDense(p, mat.Col(nil, 0, &beta))
	r.intercept = yMean
	r.fitted = true
	return nil
}

// Predict implements Regressor.
func (r *Ridge) Predict(x [][]float64) ([]float64, error) {
	if !r.fitted {
		return nil, ErrNotFitted
	}
	X, err := dense(x)
	if err != nil {
		return nil, err
	}
	if _, c := X.Dims(); c != r.coef.Len() {
		return nil, fmt.Errorf("%w: got %d features, model has %d", ErrShape, c, r.coef.Len())
	}

	Xs := r.scale.transform(X)
	rows, _ := Xs.Dims()
	var out mat.VecDense
	out.MulVec(Xs, r.coef)
	pred := make([]float64, rows)
	for i := range pred {
		pred[i] = out.AtVec(i) + r.intercept
	}
	return pred, nil
}

// Coefficients returns the weights in scaled feature space.
func (r *Ridge) Coefficients() []float64 {
	if !r.fitted {
		return nil
	}
	return mat.Col(nil, 0, r.coef)
}
