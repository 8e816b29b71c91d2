package domain

import "fmt"

// Strategy selects which models answer a daily or monthly request.
type Strategy string

const (
	// StrategyScaled runs the hourly models and multiplies by Interval.Hours.
	StrategyScaled Strategy = "scaled"
	// StrategyAggregated runs models fitted on per-interval means.
	StrategyAggregated Strategy = "aggregated"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyScaled, StrategyAggregated:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown prediction strategy %q", s)
	}
}

// TotalMode selects how the total production figure is obtained.
type TotalMode string

const (
	// TotalSum adds the per-location predictions.
	TotalSum TotalMode = "sum"
	// TotalModel uses a regressor fitted on the summed production.
	TotalModel TotalMode = "model"
)

// ParseTotalMode validates a total mode name.
func ParseTotalMode(s string) (TotalMode, error) {
	switch TotalMode(s) {
	case TotalSum, TotalModel:
		return TotalMode(s), nil
	default:
		return "", fmt.Errorf("unknown total mode %q", s)
	}
}
