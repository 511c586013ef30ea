package forecast

import (
	"math"

	"github.com/coherp/demandplan/pkg/domain/entities"
)

// Config holds everything the ensemble needs for one pipeline context
type Config struct {
	// SeasonalWeight and TreeWeight blend the two adapters; they sum to 1
	SeasonalWeight float64
	TreeWeight     float64
	Seasonal       SeasonalConfig
	Tree           TreeConfig
}

// DefaultConfig returns the product-pipeline ensemble configuration
func DefaultConfig() Config {
	return Config{
		SeasonalWeight: 0.4,
		TreeWeight:     0.6,
		Seasonal:       DefaultSeasonalConfig(),
		Tree:           DefaultTreeConfig(),
	}
}

// Ensemble blends the seasonal and tree adapters into a single forecast
// point sequence with a per-run method tag
type Ensemble struct {
	config   Config
	seasonal *SeasonalModel
	tree     *TreeModel
}

// NewEnsemble creates an ensemble forecaster
func NewEnsemble(config Config) *Ensemble {
	if config.SeasonalWeight <= 0 && config.TreeWeight <= 0 {
		config.SeasonalWeight = 0.4
		config.TreeWeight = 0.6
	}
	return &Ensemble{
		config:   config,
		seasonal: NewSeasonalModel(config.Seasonal),
		tree:     NewTreeModel(config.Tree),
	}
}

// Forecast runs both adapters independently and blends their outputs.
// A failure in one adapter never aborts the other. Steps where neither
// adapter produced a value are omitted, so the result can be shorter than
// requested, possibly empty. The returned method records which adapters
// actually contributed.
func (e *Ensemble) Forecast(series *entities.WeeklySeries, steps int) ([]entities.ForecastPoint, entities.ForecastMethod) {
	seasonalResult := e.seasonal.Forecast(series, steps)
	treeResult := e.tree.Forecast(BuildFeatures(series), steps)

	var points []entities.ForecastPoint
	lastWeek := series.LastWeek()

	for i := 0; i < steps; i++ {
		var forecast, low, high float64
		derivedInterval := false
		switch {
		case seasonalResult.Available && treeResult.Available:
			forecast = e.config.SeasonalWeight*seasonalResult.Points[i] + e.config.TreeWeight*treeResult.Points[i]
			if seasonalResult.HasInterval() {
				low, high = seasonalResult.Lower[i], seasonalResult.Upper[i]
			} else {
				derivedInterval = true
			}
		case treeResult.Available:
			forecast = treeResult.Points[i]
			derivedInterval = true
		case seasonalResult.Available:
			forecast = seasonalResult.Points[i]
			low, high = seasonalResult.Lower[i], seasonalResult.Upper[i]
		default:
			continue
		}

		forecast = round1(math.Max(0, forecast))
		if derivedInterval {
			// The +/-20% band is anchored on the rounded point estimate
			low, high = round1(forecast*0.8), round1(forecast*1.2)
		}

		// Weeks advance from the last observed week, never interpolated
		// from calendar gaps in the input
		points = append(points, clampPoint(entities.ForecastPoint{
			Week:     lastWeek.AddDate(0, 0, 7*(i+1)),
			Forecast: forecast,
			Low:      low,
			High:     high,
		}))
	}

	return points, blendMethod(seasonalResult.Available, treeResult.Available)
}

// clampPoint enforces non-negativity, one-decimal rounding and interval
// ordering around the point estimate
func clampPoint(p entities.ForecastPoint) entities.ForecastPoint {
	p.Forecast = round1(math.Max(0, p.Forecast))
	p.Low = round1(math.Max(0, p.Low))
	p.High = round1(math.Max(0, p.High))
	if p.Low > p.Forecast {
		p.Low = p.Forecast
	}
	if p.High < p.Forecast {
		p.High = p.Forecast
	}
	return p
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func blendMethod(seasonalOK, treeOK bool) entities.ForecastMethod {
	switch {
	case seasonalOK && treeOK:
		return entities.MethodEnsemble
	case treeOK:
		return entities.MethodTree
	default:
		return entities.MethodSeasonal
	}
}
