package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("aggregated")
	require.NoError(t, err)
	assert.Equal(t, StrategyAggregated, s)

	_, err = ParseStrategy("Scaled")
	require.Error(t, err)
}

func TestParseTotalMode(t *testing.T) {
	m, err := ParseTotalMode("model")
	require.NoError(t, err)
	assert.Equal(t, TotalModel, m)

	_, err = ParseTotalMode("avg")
	require.Error(t, err)
}
