package forecast

import (
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/coherp/demandplan/pkg/domain/entities"
)

// Lag offsets and rolling window widths used for every engineered frame
var (
	featureLags    = []int{1, 2, 3, 4, 8, 12, 52}
	featureWindows = []int{4, 8, 12}
)

// Frame holds engineered features for a weekly series, one row per week.
// Features without enough history at a given row carry NaN; rows are never
// dropped here, training-row selection is the caller's concern.
type Frame struct {
	Columns []string
	Weeks   []time.Time
	Rows    [][]float64
	Target  []float64
}

// FeatureColumns returns the fixed feature column layout
func FeatureColumns() []string {
	columns := []string{"week_of_year", "month", "quarter", "trend"}
	for _, lag := range featureLags {
		columns = append(columns, lagColumn(lag))
	}
	for _, window := range featureWindows {
		columns = append(columns, rollingMeanColumn(window), rollingStdColumn(window))
	}
	return append(columns, "yoy_change")
}

func lagColumn(lag int) string       { return "lag_" + strconv.Itoa(lag) }
func rollingMeanColumn(w int) string { return "rolling_mean_" + strconv.Itoa(w) }
func rollingStdColumn(w int) string  { return "rolling_std_" + strconv.Itoa(w) }

// BuildFeatures derives calendar, lag and rolling features from a weekly
// series. The returned frame is aligned to the series: row i describes the
// series' i-th week with that week's value as the target.
func BuildFeatures(series *entities.WeeklySeries) *Frame {
	columns := FeatureColumns()
	n := series.Len()
	values := series.Values()

	frame := &Frame{
		Columns: columns,
		Weeks:   make([]time.Time, n),
		Rows:    make([][]float64, n),
		Target:  make([]float64, n),
	}

	for i := 0; i < n; i++ {
		point := series.At(i)
		frame.Weeks[i] = point.Week
		frame.Target[i] = point.Value

		row := make([]float64, 0, len(columns))
		row = append(row, CalendarFeatures(point.Week, i)...)

		for _, lag := range featureLags {
			if i-lag >= 0 {
				row = append(row, values[i-lag])
			} else {
				row = append(row, math.NaN())
			}
		}

		for _, window := range featureWindows {
			if i-window+1 >= 0 {
				windowValues := values[i-window+1 : i+1]
				row = append(row, stat.Mean(windowValues, nil), stat.StdDev(windowValues, nil))
			} else {
				row = append(row, math.NaN(), math.NaN())
			}
		}

		if i-52 >= 0 {
			row = append(row, values[i]-values[i-52])
		} else {
			row = append(row, math.NaN())
		}

		frame.Rows[i] = row
	}

	return frame
}

// CalendarFeatures returns the calendar-derived feature prefix for a week:
// ISO week of year, month, quarter and the zero-based trend index
func CalendarFeatures(week time.Time, trend int) []float64 {
	_, isoWeek := week.ISOWeek()
	month := int(week.Month())
	quarter := (month-1)/3 + 1
	return []float64{float64(isoWeek), float64(month), float64(quarter), float64(trend)}
}

// ColumnIndex returns the position of a named column, or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, column := range f.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// CompleteRows returns the indices of rows where every feature and the
// target are defined
func (f *Frame) CompleteRows() []int {
	var complete []int
	for i, row := range f.Rows {
		if math.IsNaN(f.Target[i]) {
			continue
		}
		ok := true
		for _, v := range row {
			if math.IsNaN(v) {
				ok = false
				break
			}
		}
		if ok {
			complete = append(complete, i)
		}
	}
	return complete
}
