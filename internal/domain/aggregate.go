package domain

import (
	"sort"
	"time"
)

// GroupByInterval averages readings per calendar day (Daily) or per calendar
// month (Monthly). Every numeric column is averaged; the resulting reading is
// stamped with the start of its period. Readings without a timestamp are left
// out of the groups. Hourly returns the input unchanged.
func GroupByInterval(measurements []Measurement, interval Interval) ([]Measurement, error) {
	var period func(time.Time) time.Time
	switch interval {
	case Hourly:
		return measurements, nil
	case Daily:
		period = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	case Monthly:
		period = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	default:
		return nil, ErrUnknownInterval
	}

	type group struct {
		features   [NumFeatures]float64
		production [NumLocations]float64
		count      int
	}
	groups := make(map[time.Time]*group)
	for _, m := range measurements {
		if m.Time.IsZero() {
			continue
		}
		key := period(m.Time)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		for i, v := range m.Features.Row() {
			g.features[i] += v
		}
		for i, v := range m.Production {
			g.production[i] += v
		}
		g.count++
	}

	keys := make([]time.Time, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]Measurement, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		n := float64(g.count)
		row := make([]float64, NumFeatures)
		for i := range row {
			row[i] = g.features[i] / n
		}
		features, err := FeaturesFromRow(row)
		if err != nil {
			return nil, err
		}
		m := Measurement{Time: k, Features: features}
		for i := range m.Production {
			m.Production[i] = g.production[i] / n
		}
		out = append(out, m)
	}
	return out, nil
}

// FeatureMatrix flattens readings into row-major feature data.
func FeatureMatrix(measurements []Measurement) [][]float64 {
	rows := make([][]float64, len(measurements))
	for i, m := range measurements {
		rows[i] = m.Features.Row()
	}
	return rows
}

// Target extracts one location's production column, or the summed
// production when loc is Total.
func Target(measurements []Measurement, loc Location) []float64 {
	y := make([]float64, len(measurements))
	for i, m := range measurements {
		if loc == Total {
			y[i] = m.TotalProduction()
			continue
		}
		y[i] = m.Production[loc.Index()]
	}
	return y
}
