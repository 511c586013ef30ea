package entities

import "time"

// ForecastMethod identifies which forecasting method produced a result
type ForecastMethod int

const (
	MethodSeasonal ForecastMethod = iota
	MethodTree
	MethodEnsemble
	MethodAverageFallback
)

// String method for ForecastMethod enum
func (m ForecastMethod) String() string {
	switch m {
	case MethodSeasonal:
		return "seasonal"
	case MethodTree:
		return "tree"
	case MethodEnsemble:
		return "ensemble"
	case MethodAverageFallback:
		return "average-fallback"
	default:
		return "unknown"
	}
}

// ForecastPoint is a single forecast step: a point estimate with a
// two-sided interval. Forecast, Low and High are all non-negative and
// Low <= Forecast <= High.
type ForecastPoint struct {
	Week     time.Time
	Forecast float64
	Low      float64
	High     float64
}
