package planning

import (
	"runtime"

	"github.com/coherp/demandplan/pkg/application/forecast"
)

// Config holds the tunable constants for a planning run. Values previously
// scattered as module-level constants in the legacy tooling live here with
// documented defaults.
type Config struct {
	// HorizonWeeks is the forecast horizon
	HorizonWeeks int
	// DefaultWastagePercent applies to BOM lines without an explicit wastage
	DefaultWastagePercent float64
	// MinHistoryWeeks is the history length required before model fitting
	MinHistoryWeeks int
	// MinActiveWeeks is the trailing-activity gate below which a series is
	// skipped entirely
	MinActiveWeeks int
	// ActivityWindow is the trailing window for the activity gate and the
	// average fallback
	ActivityWindow int
	// TopProducts is how many products receive full model forecasts
	TopProducts int
	// Workers bounds the parallel per-series forecasting fan-out
	Workers int
}

// DefaultConfig returns the documented defaults: 8-week horizon, 5%
// wastage, 30 weeks minimum history for model fitting, 4 active weeks
// minimum, top 10 products.
func DefaultConfig() Config {
	return Config{
		HorizonWeeks:          8,
		DefaultWastagePercent: 5,
		MinHistoryWeeks:       30,
		MinActiveWeeks:        4,
		ActivityWindow:        8,
		TopProducts:           10,
		Workers:               runtime.NumCPU(),
	}
}

// ProductForecastConfig returns the ensemble configuration for the product
// and overall pipelines: seasonal period 52
func (c Config) ProductForecastConfig() forecast.Config {
	return forecast.DefaultConfig()
}

// FabricForecastConfig returns the ensemble configuration for the
// fabric-colour pipeline. The seasonal term is omitted: fitting 70+ short
// series with a 52-week seasonal component is too slow and often
// non-identifiable, a deliberate tradeoff rather than an oversight.
func (c Config) FabricForecastConfig() forecast.Config {
	config := forecast.DefaultConfig()
	config.Seasonal.SeasonalPeriod = 0
	return config
}

// SelectorConfig returns the method-selection thresholds
func (c Config) SelectorConfig() forecast.SelectorConfig {
	return forecast.SelectorConfig{
		MinHistoryWeeks: c.MinHistoryWeeks,
		MinActiveWeeks:  c.MinActiveWeeks,
		ActivityWindow:  c.ActivityWindow,
	}
}
