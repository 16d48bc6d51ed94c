// Package returns derives the annualized return and volatility of a window
// from its ledger.
package returns

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

var (
	ErrTooFewCashflows = errors.New("xirr: need at least 2 dated cashflows")
	ErrNoSignChange    = errors.New("xirr: cashflows never change sign")
	ErrNoConvergence   = errors.New("xirr: solver did not converge")
)

const (
	newtonGuess     = 0.1
	newtonMaxIter   = 100
	tolerance       = 1e-12
	bisectMaxIter   = 300
	bracketFloor    = -0.999999
	bracketCeiling  = 1e6
	daysPerYearXIRR = 365.0
)

// Cashflow is the net amount moved on one date.
type Cashflow struct {
	Date   time.Time
	Amount float64
}

// SolverError ties a solver failure to the window it happened in.
type SolverError struct {
	Anchor time.Time
	Err    error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("anchor %s: %v", e.Anchor.Format("2006-01-02"), e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Aggregate sums the cash of every entry that moves money, per calendar
// date, ascending. Marks are ignored.
func Aggregate(ledger []model.LedgerEntry) []Cashflow {
	byDay := make(map[time.Time]float64)
	for _, e := range ledger {
		if !e.Kind.MovesCash() {
			continue
		}
		byDay[model.Day(e.Date)] += e.CashAmount
	}
	out := make([]Cashflow, 0, len(byDay))
	for d, amt := range byDay {
		out = append(out, Cashflow{Date: d, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// NPV discounts flows to the first flow's date at rate, using a 365-day year.
func NPV(rate float64, flows []Cashflow) float64 {
	if len(flows) == 0 {
		return 0
	}
	t0 := flows[0].Date
	sum := 0.0
	for _, f := range flows {
		t := float64(model.DaysBetween(t0, f.Date)) / daysPerYearXIRR
		sum += f.Amount / math.Pow(1+rate, t)
	}
	return sum
}

func dNPV(rate float64, flows []Cashflow) float64 {
	t0 := flows[0].Date
	sum := 0.0
	for _, f := range flows {
		t := float64(model.DaysBetween(t0, f.Date)) / daysPerYearXIRR
		sum -= t * f.Amount / math.Pow(1+rate, t+1)
	}
	return sum
}

// XIRR solves NPV(r) = 0 for flows sorted ascending by date. It runs
// Newton-Raphson from 0.1 and falls back to bisection over a searched
// bracket when Newton stalls.
func XIRR(flows []Cashflow) (float64, error) {
	if len(flows) < 2 {
		return 0, ErrTooFewCashflows
	}
	var pos, neg bool
	for _, f := range flows {
		pos = pos || f.Amount > 0
		neg = neg || f.Amount < 0
	}
	if !pos || !neg {
		return 0, ErrNoSignChange
	}

	if r, ok := newton(flows); ok {
		return r, nil
	}
	return bisect(flows)
}

func newton(flows []Cashflow) (float64, bool) {
	r := newtonGuess
	for i := 0; i < newtonMaxIter; i++ {
		v, dv := NPV(r, flows), dNPV(r, flows)
		if dv == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		next := r - v/dv
		if next <= -1 {
			// Stay inside the domain: halve the distance to -1.
			next = (r - 1) / 2
		}
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-r) < tolerance {
			return next, true
		}
		r = next
	}
	return 0, false
}

func bisect(flows []Cashflow) (float64, error) {
	lo := bracketFloor
	flo := NPV(lo, flows)
	hi, fhi := lo, flo
	found := false
	for step := 0.0; hi < bracketCeiling; {
		if step == 0 {
			step = 0.5
		} else {
			step *= 2
		}
		lo, flo = hi, fhi
		hi = bracketFloor + step
		fhi = NPV(hi, flows)
		if math.Signbit(flo) != math.Signbit(fhi) {
			found = true
			break
		}
	}
	if !found {
		return 0, ErrNoConvergence
	}

	for i := 0; i < bisectMaxIter; i++ {
		mid := (lo + hi) / 2
		fmid := NPV(mid, flows)
		if fmid == 0 || (hi-lo)/2 < tolerance {
			return mid, nil
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0, ErrNoConvergence
}
