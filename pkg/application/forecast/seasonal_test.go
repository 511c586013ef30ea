package forecast

import (
	"math"
	"testing"
)

func TestSeasonalModel_ConstantSeries(t *testing.T) {
	model := NewSeasonalModel(DefaultSeasonalConfig())
	result := model.Forecast(constantSeries(t, 120, 10), 8)

	if !result.Available {
		t.Fatalf("Expected seasonal fit on 120 constant weeks to succeed: %s", result.Reason)
	}
	if len(result.Points) != 8 {
		t.Fatalf("Expected 8 forecast points, got %d", len(result.Points))
	}
	for i, p := range result.Points {
		if math.Abs(p-10) > 1e-6 {
			t.Errorf("Step %d: expected forecast 10 for a constant series, got %v", i, p)
		}
		if result.Lower[i] > p || result.Upper[i] < p {
			t.Errorf("Step %d: expected interval to contain the point forecast", i)
		}
	}
}

func TestSeasonalModel_InsufficientHistory(t *testing.T) {
	model := NewSeasonalModel(DefaultSeasonalConfig())
	result := model.Forecast(constantSeries(t, 40, 10), 8)

	if result.Available {
		t.Fatal("Expected a 40-week series to be too short for the seasonal fit")
	}
	if result.Reason != "insufficient history for seasonal fit" {
		t.Errorf("Unexpected unavailability reason: %s", result.Reason)
	}
}

func TestSeasonalModel_NonSeasonalShortSeries(t *testing.T) {
	// The fabric pipeline fits without a seasonal term, which works on much
	// shorter series
	config := SeasonalConfig{SeasonalPeriod: 0, MaxIterations: 200, IntervalAlpha: 0.2}
	model := NewSeasonalModel(config)
	result := model.Forecast(constantSeries(t, 20, 6), 4)

	if !result.Available {
		t.Fatalf("Expected non-seasonal fit on 20 weeks to succeed: %s", result.Reason)
	}
	for i, p := range result.Points {
		if math.Abs(p-6) > 1e-6 {
			t.Errorf("Step %d: expected forecast 6, got %v", i, p)
		}
	}
}

func TestSeasonalModel_FollowsTrend(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i)
	}
	config := SeasonalConfig{SeasonalPeriod: 0, MaxIterations: 200, IntervalAlpha: 0.2}
	result := NewSeasonalModel(config).Forecast(seriesOf(t, values), 6)

	if !result.Available {
		t.Fatalf("Expected fit on a linear trend to succeed: %s", result.Reason)
	}
	last := values[len(values)-1]
	for i, p := range result.Points {
		if p <= last {
			t.Errorf("Step %d: expected forecast above the last observation %v, got %v", i, last, p)
		}
		last = p
	}
}

func TestSeasonalModel_IntervalWidens(t *testing.T) {
	values := make([]float64, 80)
	for i := range values {
		// Noisy-ish deterministic series so sigma is nonzero
		values[i] = 20 + 5*math.Sin(float64(i)/3) + float64(i%4)
	}
	config := SeasonalConfig{SeasonalPeriod: 0, MaxIterations: 200, IntervalAlpha: 0.2}
	result := NewSeasonalModel(config).Forecast(seriesOf(t, values), 8)

	if !result.Available {
		t.Fatalf("Expected fit to succeed: %s", result.Reason)
	}
	prevWidth := 0.0
	for i := range result.Points {
		width := result.Upper[i] - result.Lower[i]
		if width < prevWidth {
			t.Errorf("Step %d: expected interval width to be non-decreasing, got %v after %v", i, width, prevWidth)
		}
		prevWidth = width
	}
	if prevWidth <= 0 {
		t.Error("Expected a nonzero interval width for a noisy series")
	}
}

func TestSeasonalModel_ZeroSteps(t *testing.T) {
	result := NewSeasonalModel(DefaultSeasonalConfig()).Forecast(constantSeries(t, 120, 10), 0)
	if result.Available {
		t.Error("Expected zero requested steps to be unavailable")
	}
}
