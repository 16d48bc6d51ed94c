// Package series turns sparse price histories into gap-free daily series.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// Series is a daily price series with exactly one price per calendar day
// between First and Last. It is immutable once built.
type Series struct {
	first  time.Time
	prices []float64
}

// Normalize sorts points ascending, keeps the last value seen for a duplicated
// day and forward-fills every missing calendar day (weekends, holidays) with
// the most recent prior price. Points whose price is not a positive finite
// number are dropped; the day is filled like any other gap.
func Normalize(points []model.PricePoint) (Series, error) {
	sorted := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if !validPrice(p.Price) {
			continue
		}
		sorted = append(sorted, model.PricePoint{Date: model.Day(p.Date), Price: p.Price})
	}
	if len(sorted) < 2 {
		return Series{}, fmt.Errorf("%w: need at least 2 valid points, got %d", model.ErrInsufficientData, len(sorted))
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	first := sorted[0].Date
	last := sorted[len(sorted)-1].Date
	n := model.DaysBetween(first, last) + 1
	if n < 2 {
		return Series{}, fmt.Errorf("%w: all points fall on %s", model.ErrInsufficientData, first.Format("2006-01-02"))
	}

	prices := make([]float64, n)
	filled := make([]bool, n)
	for _, p := range sorted {
		i := model.DaysBetween(first, p.Date)
		prices[i] = p.Price
		filled[i] = true
	}
	for i := 1; i < n; i++ {
		if !filled[i] {
			prices[i] = prices[i-1]
		}
	}
	return Series{first: first, prices: prices}, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 1)
}

// First returns the earliest date in the series.
func (s Series) First() time.Time { return s.first }

// Last returns the latest date in the series.
func (s Series) Last() time.Time { return s.first.AddDate(0, 0, len(s.prices)-1) }

// Len returns the number of days covered.
func (s Series) Len() int { return len(s.prices) }

// PriceOn returns the price for day, or false when day lies outside the series.
func (s Series) PriceOn(day time.Time) (float64, bool) {
	i := model.DaysBetween(s.first, day)
	if i < 0 || i >= len(s.prices) {
		return 0, false
	}
	return s.prices[i], true
}

// Dates returns every calendar day in the series, ascending.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.prices))
	for i := range s.prices {
		out[i] = s.first.AddDate(0, 0, i)
	}
	return out
}

// Points returns the normalized series as price points.
func (s Series) Points() []model.PricePoint {
	out := make([]model.PricePoint, len(s.prices))
	for i, p := range s.prices {
		out[i] = model.PricePoint{Date: s.first.AddDate(0, 0, i), Price: p}
	}
	return out
}

// NormalizeAll normalizes every instrument, failing on the first one that
// does not have enough data.
func NormalizeAll(instruments []model.Instrument) ([]Series, error) {
	out := make([]Series, len(instruments))
	for i, inst := range instruments {
		s, err := Normalize(inst.Prices)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: %w", inst.Name, err)
		}
		out[i] = s
	}
	return out, nil
}

// CommonStart returns the latest first date across series: the earliest day
// on which every instrument has a price.
func CommonStart(all []Series) time.Time {
	var start time.Time
	for i, s := range all {
		if i == 0 || s.First().After(start) {
			start = s.First()
		}
	}
	return start
}
