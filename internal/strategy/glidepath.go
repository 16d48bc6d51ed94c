package strategy

import (
	"math"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// daysPerYear approximates the day component of an elapsed-years figure.
const daysPerYear = 365.0

// YearsElapsed returns whole anniversaries of start passed by date plus the
// remaining days over 365.
func YearsElapsed(date, start time.Time) float64 {
	date, start = model.Day(date), model.Day(start)
	if date.Before(start) {
		return -YearsElapsed(start, date)
	}
	years := date.Year() - start.Year()
	ann := AddYearsClamped(start, years)
	if ann.After(date) {
		years--
		ann = AddYearsClamped(start, years)
	}
	return float64(years) + float64(model.DaysBetween(ann, date))/daysPerYear
}

// TargetAllocation interpolates between startAlloc and endAlloc over the last
// transitionYears of a windowYears window. Progress moves in whole-year steps
// on each anniversary of start, not continuously.
func TargetAllocation(date, start time.Time, windowYears, transitionYears int, startAlloc, endAlloc []float64) []float64 {
	elapsed := YearsElapsed(date, start)
	transitionStart := float64(windowYears - transitionYears)

	if elapsed < transitionStart || transitionYears <= 0 {
		return append([]float64(nil), startAlloc...)
	}
	if elapsed >= float64(windowYears) {
		return append([]float64(nil), endAlloc...)
	}

	progress := math.Floor(elapsed-transitionStart) / float64(transitionYears)
	progress = math.Max(0, math.Min(1, progress))

	out := make([]float64, len(startAlloc))
	for i := range startAlloc {
		out[i] = startAlloc[i] + (endAlloc[i]-startAlloc[i])*progress
	}
	return out
}

// IsAdjustmentDue reports whether date is an exact anniversary of start
// (year >= 1) falling within [windowYears-transitionYears, windowYears).
func IsAdjustmentDue(date, start time.Time, windowYears, transitionYears int, enabled bool) bool {
	if !enabled {
		return false
	}
	date, start = model.Day(date), model.Day(start)
	years := date.Year() - start.Year()
	if years < 1 || !AddYearsClamped(start, years).Equal(date) {
		return false
	}
	return years >= windowYears-transitionYears && years < windowYears
}

// GlidePath binds the allocation policy of one window.
type GlidePath struct {
	Start           time.Time
	WindowYears     int
	TransitionYears int
	Enabled         bool
	StartAlloc      []float64
	EndAlloc        []float64
}

// NewGlidePath builds the policy for a window starting on start.
func NewGlidePath(cfg model.SimulationConfig, start time.Time) GlidePath {
	return GlidePath{
		Start:           model.Day(start),
		WindowYears:     cfg.WindowYears,
		TransitionYears: cfg.TransitionYears,
		Enabled:         cfg.TransitionEnabled,
		StartAlloc:      cfg.StartAllocationPercent,
		EndAlloc:        cfg.EndAllocationPercent,
	}
}

// At returns the target allocation on date; the static start allocation
// when the transition is disabled.
func (g GlidePath) At(date time.Time) []float64 {
	if !g.Enabled {
		return g.StartAlloc
	}
	return TargetAllocation(date, g.Start, g.WindowYears, g.TransitionYears, g.StartAlloc, g.EndAlloc)
}

// Due reports whether an annual adjustment happens on date.
func (g GlidePath) Due(date time.Time) bool {
	return IsAdjustmentDue(date, g.Start, g.WindowYears, g.TransitionYears, g.Enabled)
}

// InvestmentYear is the 1-based investment year of date, counted in whole
// 12-month periods from the first contribution.
func InvestmentYear(first, date time.Time) int {
	return MonthsBetween(first, date)/12 + 1
}

// StepUpAmount returns base grown by percent for every completed investment year.
func StepUpAmount(base, percent float64, year int) float64 {
	if year <= 1 {
		return base
	}
	return base * math.Pow(1+percent/100, float64(year-1))
}
