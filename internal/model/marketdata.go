package model

import "time"

// PricePoint is one instrument's value (NAV, index level, ...) on one day.
// Dates are truncated to UTC midnight by the loaders.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Instrument is a named price history, as returned by a price source.
type Instrument struct {
	Name   string       `json:"name"`
	Prices []PricePoint `json:"prices"`
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
