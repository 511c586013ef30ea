package entities

import (
	"fmt"
	"sort"
	"time"
)

// WeekValue is a single observation in a weekly time series
type WeekValue struct {
	Week  time.Time
	Value float64
}

// WeeklySeries is an ordered weekly time series with a strict 7-day stride.
// Gaps in the input are forward-filled so that every week between the first
// and last observation carries a value.
type WeeklySeries struct {
	points []WeekValue
}

// NewWeeklySeries creates a validated WeeklySeries from raw observations.
// Observations are sorted by week, duplicate weeks are summed, and missing
// weeks are forward-filled with the previous week's value.
func NewWeeklySeries(observations []WeekValue) (*WeeklySeries, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("weekly series requires at least one observation")
	}

	// Aggregate duplicate weeks before sorting
	byWeek := make(map[time.Time]float64, len(observations))
	for _, obs := range observations {
		byWeek[obs.Week.Truncate(24*time.Hour)] += obs.Value
	}

	weeks := make([]time.Time, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	first, last := weeks[0], weeks[len(weeks)-1]
	var points []WeekValue
	lastValue := 0.0
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		if value, ok := byWeek[week]; ok {
			lastValue = value
		}
		points = append(points, WeekValue{Week: week, Value: lastValue})
	}

	return &WeeklySeries{points: points}, nil
}

// Len returns the number of weeks in the series
func (s *WeeklySeries) Len() int {
	return len(s.points)
}

// At returns the observation at index i
func (s *WeeklySeries) At(i int) WeekValue {
	return s.points[i]
}

// Values returns the series values in week order
func (s *WeeklySeries) Values() []float64 {
	values := make([]float64, len(s.points))
	for i, p := range s.points {
		values[i] = p.Value
	}
	return values
}

// LastWeek returns the start date of the most recent week
func (s *WeeklySeries) LastWeek() time.Time {
	return s.points[len(s.points)-1].Week
}

// FirstWeek returns the start date of the earliest week
func (s *WeeklySeries) FirstWeek() time.Time {
	return s.points[0].Week
}

// Points returns a copy of all observations in week order
func (s *WeeklySeries) Points() []WeekValue {
	points := make([]WeekValue, len(s.points))
	copy(points, s.points)
	return points
}

// Tail returns the last n observations (all of them when n exceeds length)
func (s *WeeklySeries) Tail(n int) []WeekValue {
	if n >= len(s.points) {
		return s.Points()
	}
	tail := make([]WeekValue, n)
	copy(tail, s.points[len(s.points)-n:])
	return tail
}

// TrailingMean returns the mean of the last n values
func (s *WeeklySeries) TrailingMean(n int) float64 {
	tail := s.Tail(n)
	if len(tail) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range tail {
		sum += p.Value
	}
	return sum / float64(len(tail))
}

// ActiveWeeks counts weeks with nonzero value among the last n
func (s *WeeklySeries) ActiveWeeks(n int) int {
	active := 0
	for _, p := range s.Tail(n) {
		if p.Value != 0 {
			active++
		}
	}
	return active
}

// TrimEnds drops the first and last week of the series. The boundary weeks
// of an order extract are usually partial, so overall statistics exclude
// them. Series with two or fewer weeks are returned unchanged.
func (s *WeeklySeries) TrimEnds() *WeeklySeries {
	if len(s.points) <= 2 {
		return s
	}
	trimmed := make([]WeekValue, len(s.points)-2)
	copy(trimmed, s.points[1:len(s.points)-1])
	return &WeeklySeries{points: trimmed}
}
