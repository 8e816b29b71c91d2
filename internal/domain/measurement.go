package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Time layouts. DatasetTimeLayout is what the CSV uses; FormTimeLayout is
// what the add-data form accepts. Both are written zero-padded; parsing also
// takes unpadded day, month and hour.
const (
	DatasetTimeLayout = "02-01-06 15:04"
	FormTimeLayout    = "01/02/2006 15:04"
	// LongDatasetTimeLayout is written for years a two-digit year cannot
	// carry (outside 1969-2068).
	LongDatasetTimeLayout = "02-01-2006 15:04"
)

const (
	datasetParseLayout     = "2-1-06 15:04"
	longDatasetParseLayout = "2-1-2006 15:04"
	formParseLayout        = "1/2/2006 15:04"
)

// Years that survive a round trip through a two-digit year.
const (
	minShortYear = 1969
	maxShortYear = 2068
)

// ErrInvalidTime is returned when a timestamp matches none of the accepted
// layouts.
var ErrInvalidTime = errors.New("invalid date and time")

// Column names as they appear in the CSV header.
const (
	ColumnDatetime       = "Datetime"
	ColumnAirTemperature = "AirTemperature"
	ColumnCloudOpacity   = "CloudOpacity"
	ColumnDHI            = "DHI"
	ColumnDNI            = "DNI"
	ColumnEBH            = "EBH"
	ColumnGHI            = "GHI"
)

// FeatureNames lists the model inputs in matrix column order.
var FeatureNames = []string{
	ColumnAirTemperature,
	ColumnCloudOpacity,
	ColumnDHI,
	ColumnDNI,
	ColumnEBH,
	ColumnGHI,
}

// NumFeatures is the width of a feature row.
const NumFeatures = 6

// Features holds the weather inputs for one reading.
type Features struct {
	AirTemperature float64 `json:"air_temperature"`
	CloudOpacity   float64 `json:"cloud_opacity"`
	DHI            float64 `json:"dhi"`
	DNI            float64 `json:"dni"`
	EBH            float64 `json:"ebh"`
	GHI            float64 `json:"ghi"`
}

// Row returns the features in FeatureNames order.
func (f Features) Row() []float64 {
	return []float64{f.AirTemperature, f.CloudOpacity, f.DHI, f.DNI, f.EBH, f.GHI}
}

// FeaturesFromRow is the inverse of Features.Row.
func FeaturesFromRow(row []float64) (Features, error) {
	if len(row) != NumFeatures {
		return Features{}, fmt.Errorf("feature row has %d values, want %d", len(row), NumFeatures)
	}
	return Features{
		AirTemperature: row[0],
		CloudOpacity:   row[1],
		DHI:            row[2],
		DNI:            row[3],
		EBH:            row[4],
		GHI:            row[5],
	}, nil
}

// Location identifies one of the production sites.
type Location int

// Production sites. Total stands for the summed production of every site
// wherever a Location selects a target.
const (
	Total     Location = 0
	Location1 Location = 1
	Location2 Location = 2
	Location3 Location = 3
)

// Locations lists every site in display order.
var Locations = []Location{Location1, Location2, Location3}

// NumLocations is the number of production sites.
const NumLocations = 3

// Index returns the zero-based position of the location.
func (l Location) Index() int { return int(l) - 1 }

// Label is the user-facing name, e.g. "Location 1".
func (l Location) Label() string {
	if l == Total {
		return "Total"
	}
	return fmt.Sprintf("Location %d", int(l))
}

// Column is the CSV production column, e.g. "Production - Location 1".
func (l Location) Column() string { return "Production - " + l.Label() }

// Measurement is one hourly reading: weather inputs plus the metered
// production of every site.
type Measurement struct {
	Time       time.Time             `json:"time"`
	Features   Features              `json:"features"`
	Production [NumLocations]float64 `json:"production"`
}

// TotalProduction sums production over all sites.
func (m Measurement) TotalProduction() float64 {
	var total float64
	for _, p := range m.Production {
		total += p
	}
	return total
}

// ParseTime accepts the dataset layouts (two- or four-digit year) and the
// form layout.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{datasetParseLayout, longDatasetParseLayout, formParseLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: want DD-MM-YY HH:MM or MM/DD/YYYY HH:MM", ErrInvalidTime, s)
}

// ParseFormTime accepts only the form layout.
func ParseFormTime(s string) (time.Time, error) {
	t, err := time.Parse(formParseLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date and time must be in format MM/DD/YYYY HH:MM", ErrInvalidTime)
	}
	return t, nil
}

// FormatTime renders t in the dataset layout, switching to a four-digit year
// when the two-digit form would read back as a different century.
func FormatTime(t time.Time) string {
	if y := t.Year(); y < minShortYear || y > maxShortYear {
		return t.Format(LongDatasetTimeLayout)
	}
	return t.Format(DatasetTimeLayout)
}
