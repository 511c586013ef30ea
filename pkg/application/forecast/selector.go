package forecast

import "github.com/coherp/demandplan/pkg/domain/entities"

// SelectorConfig holds the method-selection thresholds shared by the
// product and fabric pipelines
type SelectorConfig struct {
	// MinHistoryWeeks is the history length at which model fitting is
	// attempted instead of the trailing-average fallback
	MinHistoryWeeks int
	// MinActiveWeeks is the minimum number of nonzero weeks in the trailing
	// activity window for the series to be forecast at all
	MinActiveWeeks int
	// ActivityWindow is the trailing window inspected for activity and used
	// by the average fallback
	ActivityWindow int
}

// DefaultSelectorConfig returns the documented thresholds
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MinHistoryWeeks: 30,
		MinActiveWeeks:  4,
		ActivityWindow:  8,
	}
}

// SeriesForecast is the per-entity outcome of the method-selection policy
type SeriesForecast struct {
	Method entities.ForecastMethod
	// Points is empty for the average fallback, which projects a flat total
	Points []entities.ForecastPoint
	// Total is the summed forecast over the horizon
	Total float64
}

// Selector applies the method-selection fallback policy to one series at a
// time: recently inactive series are skipped, long series get the ensemble,
// short or unmodelable series fall back to a trailing average.
type Selector struct {
	config   SelectorConfig
	ensemble *Ensemble
}

// NewSelector creates a selector around an ensemble forecaster
func NewSelector(config SelectorConfig, ensemble *Ensemble) *Selector {
	if config.ActivityWindow <= 0 {
		config.ActivityWindow = 8
	}
	return &Selector{config: config, ensemble: ensemble}
}

// Forecast applies the policy. The second return value is false when the
// series is skipped entirely (no recent activity): the entity must then be
// excluded from every output, not reported with a zero forecast.
func (s *Selector) Forecast(series *entities.WeeklySeries, steps int) (SeriesForecast, bool) {
	if series == nil || series.Len() == 0 {
		return SeriesForecast{}, false
	}
	if series.ActiveWeeks(s.config.ActivityWindow) < s.config.MinActiveWeeks {
		return SeriesForecast{}, false
	}

	if series.Len() >= s.config.MinHistoryWeeks {
		points, method := s.ensemble.Forecast(series, steps)
		if len(points) > 0 {
			total := 0.0
			for _, p := range points {
				total += p.Forecast
			}
			return SeriesForecast{Method: method, Points: points, Total: total}, true
		}
		// Both adapters unavailable: degrade to the trailing average
	}

	average := series.TrailingMean(s.config.ActivityWindow)
	return SeriesForecast{
		Method: entities.MethodAverageFallback,
		Total:  average * float64(steps),
	}, true
}
