package domain

import (
	"errors"
	"fmt"
	"math"
)

// Bounds for manually entered readings.
const (
	MinAirTemperature = -50.0
	MaxAirTemperature = 50.0
	MinCloudOpacity   = 0.0
	MaxCloudOpacity   = 100.0
)

// ErrInvalidMeasurement wraps every validation failure so callers can
// distinguish bad input from I/O errors.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// ValidateMeasurement checks a reading against the input boundaries and
// returns the first violation.
func ValidateMeasurement(m Measurement) error {
	f := m.Features
	for _, v := range append(f.Row(), m.Production[:]...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: values must be finite numbers", ErrInvalidMeasurement)
		}
	}

	if f.AirTemperature < MinAirTemperature || f.AirTemperature > MaxAirTemperature {
		return fmt.Errorf("%w: temperature must be between %g and %g degrees", ErrInvalidMeasurement, MinAirTemperature, MaxAirTemperature)
	}
	if f.CloudOpacity < MinCloudOpacity || f.CloudOpacity > MaxCloudOpacity {
		return fmt.Errorf("%w: cloud opacity must be between %g%% and %g%%", ErrInvalidMeasurement, MinCloudOpacity, MaxCloudOpacity)
	}

	irradiance := []struct {
		name  string
		value float64
	}{
		{ColumnDHI, f.DHI},
		{ColumnDNI, f.DNI},
		{ColumnEBH, f.EBH},
		{ColumnGHI, f.GHI},
	}
	for _, c := range irradiance {
		if c.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidMeasurement, c.name)
		}
	}

	for _, loc := range Locations {
		if m.Production[loc.Index()] < 0 {
			return fmt.Errorf("%w: production for %s must be a non-negative number", ErrInvalidMeasurement, loc.Label())
		}
	}
	return nil
}
