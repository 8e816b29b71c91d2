package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportance_IgnoredFeatureScoresZero(t *testing.T) {
	x, y := linearData(80)

	r := NewRidge(0)
	require.NoError(t, r.Fit(x, y))

	imp, err := Importance(r, x, y)
	require.NoError(t, err)
	require.Len(t, imp, 3)

	assert.InDelta(t, 1.0, imp[0]+imp[1]+imp[2], 1e-9)
	assert.Greater(t, imp[0], 0.0)
	assert.Greater(t, imp[1], 0.0)
	assert.InDelta(t, 0.0, imp[2], 1e-6)
}

func TestImportance_ConstantModel(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 1}, {3, 3}, {4, 0}}
	y := []float64{5, 5, 5, 5}

	r := NewRidge(1)
	require.NoError(t, r.Fit(x, y))

	imp, err := Importance(r, x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, imp)
}

func TestImportance_Unfitted(t *testing.T) {
	_, err := Importance(NewRidge(1), [][]float64{{1}}, []float64{1})
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float64{0.25, 0.75}, Normalize([]float64{1, 3}))
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{0, 0}))
}

func TestMeanImportance(t *testing.T) {
	got := MeanImportance([]float64{1, 0}, []float64{0, 1}, []float64{0.5, 0.5})
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, got, 1e-12)
	assert.Nil(t, MeanImportance())
}
