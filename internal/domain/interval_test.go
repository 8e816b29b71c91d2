package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input string
		want  Interval
	}{
		{"hourly", Hourly},
		{"daily", Daily},
		{"monthly", Monthly},
		{"Daily", Daily},
		{" monthly ", Monthly},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterval(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "weekly", "yearly"} {
		_, err := ParseInterval(bad)
		require.ErrorIs(t, err, ErrUnknownInterval, bad)
	}
}

func TestIntervalHours(t *testing.T) {
	assert.Equal(t, 1.0, Hourly.Hours())
	assert.Equal(t, 24.0, Daily.Hours())
	assert.Equal(t, 720.0, Monthly.Hours())
	assert.Equal(t, Daily.Hours()*DaysPerMonth, Monthly.Hours())
}

func TestIntervalTotalLabel(t *testing.T) {
	assert.Equal(t, "Total - hourly prediction", Hourly.TotalLabel())
	assert.Equal(t, "Total - monthly prediction", Monthly.TotalLabel())
}
