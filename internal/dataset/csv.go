// Package dataset reads and appends the hourly weather/production CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Header returns the CSV header in file order.
func Header() []string {
	header := []string{domain.ColumnDatetime}
	header = append(header, domain.FeatureNames...)
	for _, loc := range domain.Locations {
		header = append(header, loc.Column())
	}
	return header
}

// LoadStats reports how many data rows were read and how many survived cleaning.
type LoadStats struct {
	Total   int `json:"total"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
	// Undated counts kept rows whose timestamp could not be parsed. They take
	// part in hourly training but not in daily or monthly groups.
	Undated int `json:"undated"`
}

// Load opens path and parses it with Parse.
func Load(path string) ([]domain.Measurement, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	measurements, stats, err := Parse(f)
	if err != nil {
		return nil, stats, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return measurements, stats, nil
}

// Parse reads a CSV with a header row. Columns are located by name, so extra
// or reordered columns are tolerated. Rows with a missing or non-numeric
// feature or production value are dropped.
func Parse(r io.Reader) ([]domain.Measurement, LoadStats, error) {
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, errors.New("empty file")
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, stats, err
	}

	var out []domain.Measurement
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Total+2, err)
		}
		if isBlank(rec) {
			continue
		}
		stats.Total++

		m, ok := parseRecord(rec, idx)
		if !ok {
			stats.Dropped++
			continue
		}
		if m.Time.IsZero() {
			stats.Undated++
		}
		out = append(out, m)
	}
	stats.Kept = len(out)
	return out, stats, nil
}

// FormatRecord renders a measurement as CSV fields in Header order.
func FormatRecord(m domain.Measurement) []string {
	rec := []string{domain.FormatTime(m.Time)}
	for _, v := range m.Features.Row() {
		rec = append(rec, formatFloat(v))
	}
	for _, v := range m.Production {
		rec = append(rec, formatFloat(v))
	}
	return rec
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[name] = i
	}
	for _, name := range Header() {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (domain.Measurement, bool) {
	cell := func(name string) (string, bool) {
		i := idx[name]
		if i >= len(rec) {
			return "", false
		}
		return rec[i], true
	}

	row := make([]float64, 0, domain.NumFeatures)
	for _, name := range domain.FeatureNames {
		s, ok := cell(name)
		if !ok {
			return domain.Measurement{}, false
		}
		v, ok := parseNumber(s)
		if !ok {
			return domain.Measurement{}, false
		}
		row = append(row, v)
	}
	features, err := domain.FeaturesFromRow(row)
	if err != nil {
		return domain.Measurement{}, false
	}

	m := domain.Measurement{Features: features}
	for _, loc := range domain.Locations {
		s, ok := cell(loc.Column())
		if !ok {
			return domain.Measurement{}, false
		}
		v, ok := parseNumber(s)
		if !ok {
			return domain.Measurement{}, false
		}
		m.Production[loc.Index()] = v
	}

	if s, ok := cell(domain.ColumnDatetime); ok {
		if t, err := domain.ParseTime(s); err == nil {
			m.Time = t
		}
	}
	return m, true
}

// parseNumber treats empty cells, "NaN" and unparsable text as missing.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
