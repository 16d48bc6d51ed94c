package strategy

import (
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// SIPParams configures monthly contributions over Months months.
type SIPParams struct {
	Months int
}

// SIPStrategy contributes once a month, on the anchor's day of month,
// for the Months months preceding the anchor.
type SIPStrategy struct {
	Params SIPParams
}

func (s *SIPStrategy) Name() string { return string(model.ModeSIP) }

func (s *SIPStrategy) Window(anchor, firstDate time.Time) (Window, bool) {
	dates, ok := ContributionDates(anchor, s.Params.Months, firstDate)
	if !ok {
		return Window{}, false
	}
	return Window{Start: dates[0], Anchor: model.Day(anchor), ContributionDates: dates}, true
}

// ContributionDates returns the months monthly dates preceding anchor,
// ascending: anchor-months, ..., anchor-1 month. Each date keeps the anchor's
// day of month, clamped to the month's last day, so stepping forward from the
// first date yields the same set. ok is false when the first date precedes
// firstDate.
func ContributionDates(anchor time.Time, months int, firstDate time.Time) ([]time.Time, bool) {
	if months <= 0 {
		return nil, false
	}
	anchor = model.Day(anchor)
	dates := make([]time.Time, months)
	for i := months; i >= 1; i-- {
		dates[months-i] = AddMonthsClamped(anchor, -i, anchor.Day())
	}
	if dates[0].Before(model.Day(firstDate)) {
		return nil, false
	}
	return dates, true
}

// AddMonthsClamped moves t by n calendar months and places it on day, or on
// the month's last day when day overflows (31 -> 30, 29 -> 28 in February).
func AddMonthsClamped(t time.Time, n int, day int) time.Time {
	y, m, _ := t.Date()
	total := y*12 + int(m-1) + n
	year, month := total/12, time.Month(total%12+1)
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddYearsClamped is AddMonthsClamped by whole years, keeping t's day.
func AddYearsClamped(t time.Time, years int) time.Time {
	return AddMonthsClamped(t, years*12, t.Day())
}

// MonthsBetween counts the whole calendar months from a to b (b after a).
// A month only counts once b's day reaches a's day, or the end of b's month.
func MonthsBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	n := (by-ay)*12 + int(bm-am)
	if bd < ad && bd != daysIn(by, bm) {
		n--
	}
	return n
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
