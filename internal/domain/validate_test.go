package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMeasurement() Measurement {
	return Measurement{
		Features:   Features{AirTemperature: 18, CloudOpacity: 35, DHI: 90, DNI: 500, EBH: 300, GHI: 420},
		Production: [NumLocations]float64{12.5, 8, 20.75},
	}
}

func TestValidateMeasurement(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Measurement)
		wantErr string
	}{
		{"valid", func(*Measurement) {}, ""},
		{"lowest temperature", func(m *Measurement) { m.Features.AirTemperature = -50 }, ""},
		{"highest temperature", func(m *Measurement) { m.Features.AirTemperature = 50 }, ""},
		{"temperature too low", func(m *Measurement) { m.Features.AirTemperature = -50.1 }, "temperature"},
		{"temperature too high", func(m *Measurement) { m.Features.AirTemperature = 51 }, "temperature"},
		{"clear sky", func(m *Measurement) { m.Features.CloudOpacity = 0 }, ""},
		{"overcast", func(m *Measurement) { m.Features.CloudOpacity = 100 }, ""},
		{"negative cloud opacity", func(m *Measurement) { m.Features.CloudOpacity = -1 }, "cloud opacity"},
		{"cloud opacity over 100", func(m *Measurement) { m.Features.CloudOpacity = 100.5 }, "cloud opacity"},
		{"zero irradiance", func(m *Measurement) { m.Features = Features{AirTemperature: 5, CloudOpacity: 90} }, ""},
		{"negative DHI", func(m *Measurement) { m.Features.DHI = -1 }, "DHI"},
		{"negative DNI", func(m *Measurement) { m.Features.DNI = -0.5 }, "DNI"},
		{"negative EBH", func(m *Measurement) { m.Features.EBH = -3 }, "EBH"},
		{"negative GHI", func(m *Measurement) { m.Features.GHI = -10 }, "GHI"},
		{"zero production", func(m *Measurement) { m.Production = [NumLocations]float64{} }, ""},
		{"negative production location 2", func(m *Measurement) { m.Production[1] = -1 }, "Location 2"},
		{"NaN value", func(m *Measurement) { m.Features.GHI = math.NaN() }, "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMeasurement()
			tt.mutate(&m)
			err := ValidateMeasurement(m)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidMeasurement)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
