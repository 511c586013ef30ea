package forecast

// ModelForecast is the explicit outcome of a single fit-and-forecast
// attempt by one model adapter. Adapters never surface fitting failures as
// errors; an unavailable result with a reason is an accepted outcome that
// the ensemble's fallback policy branches on.
type ModelForecast struct {
	Available bool
	Reason    string
	Points    []float64
	// Lower and Upper carry the model's own confidence interval when it
	// produces one (the seasonal adapter does, the tree adapter does not)
	Lower []float64
	Upper []float64
}

// Unavailable creates a ModelForecast describing why no forecast was made
func Unavailable(reason string) ModelForecast {
	return ModelForecast{Reason: reason}
}

// HasInterval reports whether the forecast carries its own interval
func (f ModelForecast) HasInterval() bool {
	return f.Available && len(f.Lower) == len(f.Points) && len(f.Upper) == len(f.Points) && len(f.Points) > 0
}
