package simulation

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// TrajectorySummary condenses a temperature trajectory into headline numbers
type TrajectorySummary struct {
	Points         int     `json:"points"`
	First          float64 `json:"first"`
	Last           float64 `json:"last"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Change         float64 `json:"change"`
	TrendPerDecade float64 `json:"trend_per_decade"`
	PeakYear       int     `json:"peak_year"`
}

// Summarize describes a chart series. It returns nil for an empty series.
// The trend is the least-squares slope in degrees per decade; it needs at
// least two points and is zero otherwise.
func Summarize(series []ChartPoint) *TrajectorySummary {
	if len(series) == 0 {
		return nil
	}

	years := make([]float64, len(series))
	temps := make([]float64, len(series))
	for i, p := range series {
		years[i] = float64(p.Year)
		temps[i] = p.Temperature
	}

	min, _ := stats.Min(temps)
	max, _ := stats.Max(temps)
	mean, _ := stats.Mean(temps)
	median, _ := stats.Median(temps)

	s := &TrajectorySummary{
		Points: len(series),
		First:  temps[0],
		Last:   temps[len(temps)-1],
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		Change: temps[len(temps)-1] - temps[0],
	}

	for _, p := range series {
		if p.Temperature == max {
			s.PeakYear = p.Year
			break
		}
	}

	if len(series) >= 2 {
		_, beta := stat.LinearRegression(years, temps, nil, false)
		s.TrendPerDecade = beta * 10
	}

	return s
}
