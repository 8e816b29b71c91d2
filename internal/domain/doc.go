// Package domain models hourly weather readings and solar production for the
// three Čačak production sites.
//
// # Data Source
//
// Readings come from a single CSV file (Data_Cacak.csv) with one row per hour.
// Weather columns are satellite-derived irradiance and cloud estimates; the
// three production columns are the metered output of each site for that hour.
//
// # Columns
//
//	Datetime                 "dd-mm-yy HH:MM", e.g. "01-06-23 13:00"
//	AirTemperature           °C
//	CloudOpacity             percent, 0-100
//	DHI                      diffuse horizontal irradiance, W/m²
//	DNI                      direct normal irradiance, W/m²
//	EBH                      direct (beam) horizontal irradiance, W/m²
//	GHI                      global horizontal irradiance, W/m²
//	Production - Location N  kWh produced by site N during the hour
//
// Readings entered through the dashboard form use "MM/DD/YYYY HH:MM". Both
// layouts are accepted by [ParseTime]; rows are always written back in the
// dataset layout so appended rows read back like the originals.
//
// # Intervals
//
// Predictions are requested per [Interval]. An hourly prediction is the
// model output for the most recent reading. Daily and monthly predictions
// express the same hourly rate over 24 and 24*30 hours; see [Interval.Hours].
// [GroupByInterval] produces the daily and monthly mean matrices used when
// interval-specific models are trained.
//
// # Validation
//
// Manually entered readings are checked by [ValidateMeasurement]:
//
//	AirTemperature   -50 .. 50
//	CloudOpacity       0 .. 100
//	DHI, DNI, EBH, GHI >= 0
//	Production         >= 0 for every location
package domain
