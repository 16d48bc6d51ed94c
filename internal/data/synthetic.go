package data

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// syntheticBase is the first value of every generated series.
const syntheticBase = 100.0

// FixedReturnSeries generates a daily series from start to end (inclusive)
// that compounds annualPercent a year, one calendar day at a time.
func FixedReturnSeries(start, end time.Time, annualPercent float64) ([]model.PricePoint, error) {
	return compound(start, end, func(time.Time) float64 { return annualPercent })
}

// InflationSeries generates a daily index compounding each calendar year's
// rate over that year's days. A year without a rate reuses the latest earlier
// one; years before the first known rate grow at zero.
func InflationSeries(start, end time.Time, yearlyRates map[int]float64) ([]model.PricePoint, error) {
	years := make([]int, 0, len(yearlyRates))
	for y := range yearlyRates {
		years = append(years, y)
	}
	sort.Ints(years)

	rateFor := func(d time.Time) float64 {
		i := sort.SearchInts(years, d.Year()+1) - 1
		if i < 0 {
			return 0
		}
		return yearlyRates[years[i]]
	}
	return compound(start, end, rateFor)
}

func compound(start, end time.Time, annualPercent func(time.Time) float64) ([]model.PricePoint, error) {
	start, end = model.Day(start), model.Day(end)
	if !end.After(start) {
		return nil, fmt.Errorf("end %s must be after start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	n := model.DaysBetween(start, end) + 1
	out := make([]model.PricePoint, n)
	price := syntheticBase
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		if i > 0 {
			rate := annualPercent(d)
			if rate <= -100 {
				return nil, fmt.Errorf("annual rate %g%% on %s is not a valid growth rate", rate, d.Format("2006-01-02"))
			}
			price *= math.Pow(1+rate/100, 1/float64(daysInYear(d.Year())))
		}
		out[i] = model.PricePoint{Date: d, Price: price}
	}
	return out, nil
}

func daysInYear(year int) int {
	return time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
