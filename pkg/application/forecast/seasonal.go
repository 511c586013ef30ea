package forecast

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/coherp/demandplan/pkg/domain/entities"
)

// SeasonalConfig parameterizes the seasonal model adapter. The two call
// sites in the pipeline use different configurations on purpose: the
// product and overall pipelines fit a seasonal term with period 52, the
// fabric-colour pipeline omits it because fitting 70+ short series with a
// 52-week seasonal component is slow and often non-identifiable.
type SeasonalConfig struct {
	// SeasonalPeriod enables the seasonal AR term and seasonal differencing
	// when positive; 0 fits a plain ARIMA(1,1,1)
	SeasonalPeriod int
	// MaxIterations bounds the fit; the cap substitutes for a timeout
	MaxIterations int
	// IntervalAlpha is the two-sided interval tail mass (0.2 = 80% interval)
	IntervalAlpha float64
}

// DefaultSeasonalConfig returns the product-pipeline configuration
func DefaultSeasonalConfig() SeasonalConfig {
	return SeasonalConfig{
		SeasonalPeriod: 52,
		MaxIterations:  200,
		IntervalAlpha:  0.2,
	}
}

// SeasonalModel fits an ARIMA(1,1,1) model, optionally with a seasonal
// AR(1) term and seasonal differencing, by conditional sum of squares.
// A single fit attempt is made per series; every failure mode degrades to
// an unavailable result rather than an error.
type SeasonalModel struct {
	config SeasonalConfig
}

// NewSeasonalModel creates a seasonal model adapter
func NewSeasonalModel(config SeasonalConfig) *SeasonalModel {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 200
	}
	if config.IntervalAlpha <= 0 || config.IntervalAlpha >= 1 {
		config.IntervalAlpha = 0.2
	}
	return &SeasonalModel{config: config}
}

// Forecast fits the model to the raw weekly series and produces steps point
// forecasts with a two-sided interval
func (m *SeasonalModel) Forecast(series *entities.WeeklySeries, steps int) ModelForecast {
	if steps <= 0 {
		return Unavailable("no forecast steps requested")
	}

	values := series.Values()
	period := m.config.SeasonalPeriod

	// First-order differencing, then seasonal differencing when enabled
	diffed := difference(values, 1)
	if period > 0 {
		diffed = difference(diffed, period)
	}
	if len(diffed) < minResidualCount(period) {
		return Unavailable("insufficient history for seasonal fit")
	}

	params, sse, count, ok := m.fit(diffed, period)
	if !ok {
		return Unavailable("seasonal fit did not converge")
	}

	sigma := math.Sqrt(sse / float64(count))

	// Forecast on the differenced scale, then undo both differencing steps
	forecastDiffed := m.extend(diffed, params, period, steps)
	points := integrate(values, forecastDiffed, period, steps)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - m.config.IntervalAlpha/2)
	lower := make([]float64, steps)
	upper := make([]float64, steps)
	for i := range points {
		if math.IsNaN(points[i]) || math.IsInf(points[i], 0) {
			return Unavailable("seasonal forecast is not finite")
		}
		halfWidth := z * sigma * math.Sqrt(float64(i+1))
		lower[i] = points[i] - halfWidth
		upper[i] = points[i] + halfWidth
	}

	return ModelForecast{
		Available: true,
		Points:    points,
		Lower:     lower,
		Upper:     upper,
	}
}

// minResidualCount is the minimum differenced length for a meaningful fit
func minResidualCount(period int) int {
	if period > 0 {
		return period/4 + 8
	}
	return 8
}

// fit minimizes the conditional sum of squared residuals over the AR, MA
// and optional seasonal-AR coefficients
func (m *SeasonalModel) fit(z []float64, period int) (params []float64, sse float64, count int, ok bool) {
	dims := 2
	if period > 0 {
		dims = 3
	}

	objective := func(x []float64) float64 {
		sum, n := cssResiduals(z, x, period, nil)
		// Soft stationarity penalty keeps the optimizer inside the unit circle
		penalty := 0.0
		for _, p := range x {
			if excess := math.Abs(p) - 0.99; excess > 0 {
				penalty += 1e9 * excess * excess
			}
		}
		if n == 0 {
			return math.Inf(1)
		}
		return sum + penalty
	}

	problem := optimize.Problem{Func: objective}
	initial := make([]float64, dims)
	for i := range initial {
		initial[i] = 0.1
	}
	settings := &optimize.Settings{MajorIterations: m.config.MaxIterations}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if result == nil {
		return nil, 0, 0, false
	}
	// An iteration-capped fit is still usable; only a non-finite objective
	// or a hard optimizer failure makes the model unavailable
	if err != nil && result.Status != optimize.IterationLimit {
		return nil, 0, 0, false
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, 0, 0, false
	}

	sse, count = cssResiduals(z, result.X, period, nil)
	if count == 0 || math.IsNaN(sse) || math.IsInf(sse, 0) {
		return nil, 0, 0, false
	}
	return result.X, sse, count, true
}

// cssResiduals runs the residual recursion
//
//	e[t] = z[t] - ar*z[t-1] - sar*z[t-period] - ma*e[t-1]
//
// and returns the sum of squared residuals with the residual count. When
// residuals is non-nil the per-step residuals are appended to it.
func cssResiduals(z, params []float64, period int, residuals *[]float64) (float64, int) {
	ar, ma := params[0], params[1]
	sar := 0.0
	if period > 0 && len(params) > 2 {
		sar = params[2]
	}

	start := 1
	if period > 0 && period+1 > start {
		start = period
	}

	sum := 0.0
	count := 0
	prevResidual := 0.0
	for t := start; t < len(z); t++ {
		predicted := ar*z[t-1] + ma*prevResidual
		if period > 0 && t-period >= 0 {
			predicted += sar * z[t-period]
		}
		e := z[t] - predicted
		sum += e * e
		count++
		prevResidual = e
		if residuals != nil {
			*residuals = append(*residuals, e)
		}
	}
	return sum, count
}

// extend produces steps forecasts on the differenced scale
func (m *SeasonalModel) extend(z, params []float64, period, steps int) []float64 {
	ar, ma := params[0], params[1]
	sar := 0.0
	if period > 0 && len(params) > 2 {
		sar = params[2]
	}

	// Recover the final in-sample residual for the one-step MA term
	var residuals []float64
	cssResiduals(z, params, period, &residuals)
	lastResidual := 0.0
	if len(residuals) > 0 {
		lastResidual = residuals[len(residuals)-1]
	}

	extended := make([]float64, len(z), len(z)+steps)
	copy(extended, z)
	for i := 0; i < steps; i++ {
		t := len(extended)
		predicted := ar * extended[t-1]
		if period > 0 && t-period >= 0 {
			predicted += sar * extended[t-period]
		}
		if i == 0 {
			predicted += ma * lastResidual
		}
		extended = append(extended, predicted)
	}
	return extended[len(z):]
}

// integrate inverts seasonal and first-order differencing, turning
// differenced-scale forecasts back into level forecasts
func integrate(values, forecastDiffed []float64, period, steps int) []float64 {
	// Rebuild the first-difference series to invert the seasonal step
	firstDiff := difference(values, 1)

	diffLevels := make([]float64, len(firstDiff), len(firstDiff)+steps)
	copy(diffLevels, firstDiff)
	for _, fd := range forecastDiffed {
		next := fd
		if period > 0 {
			t := len(diffLevels)
			if t-period >= 0 {
				next += diffLevels[t-period]
			}
		}
		diffLevels = append(diffLevels, next)
	}

	points := make([]float64, steps)
	level := values[len(values)-1]
	for i := 0; i < steps; i++ {
		level += diffLevels[len(firstDiff)+i]
		points[i] = level
	}
	return points
}

// difference returns x[t] - x[t-lag] for t >= lag
func difference(x []float64, lag int) []float64 {
	if len(x) <= lag {
		return nil
	}
	out := make([]float64, len(x)-lag)
	for t := lag; t < len(x); t++ {
		out[t-lag] = x[t] - x[t-lag]
	}
	return out
}
