package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownInterval is returned for an interval name other than hourly,
// daily or monthly.
var ErrUnknownInterval = errors.New("unknown interval")

// Interval selects the time span a prediction covers.
type Interval string

// Supported intervals.
const (
	Hourly  Interval = "hourly"
	Daily   Interval = "daily"
	Monthly Interval = "monthly"
)

// Intervals lists every interval in display order.
var Intervals = []Interval{Hourly, Daily, Monthly}

// DaysPerMonth is the fixed month length used to scale monthly predictions.
const DaysPerMonth = 30

// ParseInterval maps a URL segment to an Interval.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(s))) {
	case Hourly:
		return Hourly, nil
	case Daily:
		return Daily, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInterval, s)
	}
}

// Hours is the number of hourly readings the interval spans:
// 1 for hourly, 24 for daily, 24*30 for monthly.
func (i Interval) Hours() float64 {
	switch i {
	case Daily:
		return 24
	case Monthly:
		return 24 * DaysPerMonth
	default:
		return 1
	}
}

// TotalLabel is the legend text for the total bar.
func (i Interval) TotalLabel() string {
	return fmt.Sprintf("Total - %s prediction", i)
}

func (i Interval) String() string { return string(i) }
