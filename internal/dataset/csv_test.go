package dataset_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/dataset"
	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Datetime,AirTemperature,CloudOpacity,DHI,DNI,EBH,GHI,Production - Location 1,Production - Location 2,Production - Location 3\n"

func TestParse_CleanRows(t *testing.T) {
	input := testHeader +
		"01-06-23 12:00,24.1,10,95,720,540,640,31.2,18.4,25\n" +
		"01-06-23 13:00,25,5.5,90,735,560,655,32,19,26.5\n"

	got, stats, err := dataset.Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, dataset.LoadStats{Total: 2, Kept: 2}, stats)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2023, 6, 1, 13, 0, 0, 0, time.UTC), got[1].Time)
	assert.Equal(t, domain.Features{AirTemperature: 25, CloudOpacity: 5.5, DHI: 90, DNI: 735, EBH: 560, GHI: 655}, got[1].Features)
	assert.Equal(t, [domain.NumLocations]float64{32, 19, 26.5}, got[1].Production)
}

func TestParse_DropsMissingAndNonNumeric(t *testing.T) {
	input := testHeader +
		"01-06-23 12:00,24.1,10,95,720,540,640,31.2,18.4,25\n" +
		"01-06-23 13:00,n/a,10,95,720,540,640,31.2,18.4,25\n" +
		"01-06-23 14:00,24.1,,95,720,540,640,31.2,18.4,25\n" +
		"01-06-23 15:00,24.1,10,95,720,540,640,31.2,,25\n" +
		"01-06-23 16:00,24.1,10\n" +
		"\n" +
		"not a date,20,10,95,720,540,640,1,2,3\n"

	got, stats, err := dataset.Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, 4, stats.Dropped)
	assert.Equal(t, 1, stats.Undated)
	require.Len(t, got, 2)
	assert.True(t, got[1].Time.IsZero(), "unparsable timestamp keeps the row without a time")
}

func TestParse_ColumnsByName(t *testing.T) {
	input := "GHI,Production - Location 3,Datetime,Production - Location 2,AirTemperature,CloudOpacity,DHI,DNI,EBH,Production - Location 1,Extra\n" +
		"600,3,01-06-23 12:00,2,20,10,90,700,500,1,ignored\n"

	got, _, err := dataset.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 600.0, got[0].Features.GHI)
	assert.Equal(t, [domain.NumLocations]float64{1, 2, 3}, got[0].Production)
}

func TestParse_MissingColumn(t *testing.T) {
	input := "Datetime,AirTemperature,CloudOpacity,DHI,DNI,EBH,Production - Location 1,Production - Location 2,Production - Location 3\n"

	_, _, err := dataset.Parse(strings.NewReader(input))
	require.ErrorIs(t, err, dataset.ErrMissingColumn)
	assert.Contains(t, err.Error(), "GHI")
}

func TestParse_EmptyFile(t *testing.T) {
	_, _, err := dataset.Parse(strings.NewReader(""))
	require.Error(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, _, err := dataset.Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open dataset")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(testHeader+"01-06-23 12:00,24.1,10,95,720,540,640,31.2,18.4,25\n"), 0o600))

	got, stats, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, stats.Kept)
}

func TestFormatRecord(t *testing.T) {
	m := domain.Measurement{
		Time:       time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		Features:   domain.Features{AirTemperature: -3.5, CloudOpacity: 100, GHI: 12},
		Production: [domain.NumLocations]float64{0.125, 0, 1},
	}

	assert.Equal(t,
		[]string{"15-01-24 09:00", "-3.5", "100", "0", "0", "0", "12", "0.125", "0", "1"},
		dataset.FormatRecord(m))
	assert.Len(t, dataset.Header(), 10)
}
