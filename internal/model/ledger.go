package model

import "time"

// LedgerEntry is one dated event for one instrument inside a window.
// Cash sign convention: negative = invested by the investor, positive = returned.
type LedgerEntry struct {
	Instrument int       `json:"instrument"`
	Date       time.Time `json:"date"`
	Kind       Kind      `json:"kind"`

	Price      float64 `json:"price"`
	UnitsDelta float64 `json:"units_delta"`
	CashAmount float64 `json:"cash_amount"`

	// Holdings after this entry.
	CumulativeUnits float64 `json:"cumulative_units"`
	CurrentValue    float64 `json:"current_value"`

	// Instrument share of the total portfolio value after the event, in percent.
	AllocationPercent *float64 `json:"allocation_percent,omitempty"`
}

// The constructors below keep each kind's payload consistent: marks never move
// cash or units, rebalances and adjustments always carry an allocation.

// NewContribution records a purchase of units worth amount.
func NewContribution(inst int, on time.Time, price, amount, unitsAfter float64) LedgerEntry {
	return LedgerEntry{
		Instrument:      inst,
		Date:            on,
		Kind:            KindContribute,
		Price:           price,
		UnitsDelta:      amount / price,
		CashAmount:      -amount,
		CumulativeUnits: unitsAfter,
		CurrentValue:    unitsAfter * price,
	}
}

// NewRebalance records a drift correction; delta is the value bought (>0) or sold (<0).
func NewRebalance(inst int, on time.Time, price, delta, unitsAfter, allocation float64) LedgerEntry {
	e := newTransfer(inst, on, price, delta, unitsAfter, allocation)
	e.Kind = KindRebalance
	return e
}

// NewAdjustment records a glide-path correction; delta as in NewRebalance.
func NewAdjustment(inst int, on time.Time, price, delta, unitsAfter, allocation float64) LedgerEntry {
	e := newTransfer(inst, on, price, delta, unitsAfter, allocation)
	e.Kind = KindAnnualAdjust
	return e
}

func newTransfer(inst int, on time.Time, price, delta, unitsAfter, allocation float64) LedgerEntry {
	alloc := allocation
	return LedgerEntry{
		Instrument:        inst,
		Date:              on,
		Price:             price,
		UnitsDelta:        delta / price,
		CashAmount:        -delta,
		CumulativeUnits:   unitsAfter,
		CurrentValue:      unitsAfter * price,
		AllocationPercent: &alloc,
	}
}

// NewMark records a valuation only.
func NewMark(inst int, on time.Time, price, units float64, allocation *float64) LedgerEntry {
	return LedgerEntry{
		Instrument:        inst,
		Date:              on,
		Kind:              KindMark,
		Price:             price,
		CumulativeUnits:   units,
		CurrentValue:      units * price,
		AllocationPercent: allocation,
	}
}

// NewLiquidation sells every unit held; holdings drop to zero.
// An instrument with no units yields a zero entry.
func NewLiquidation(inst int, on time.Time, price, units float64) LedgerEntry {
	e := LedgerEntry{
		Instrument: inst,
		Date:       on,
		Kind:       KindLiquidate,
		Price:      price,
	}
	if units != 0 {
		e.UnitsDelta = -units
		e.CashAmount = units * price
	}
	return e
}

// SimulationState is the mutable accumulator of one window computation.
// It is created fresh for every anchor date and never shared.
type SimulationState struct {
	Units            []float64
	ContributedUnits []float64
}

// NewSimulationState returns zeroed holdings for n instruments.
func NewSimulationState(n int) *SimulationState {
	return &SimulationState{
		Units:            make([]float64, n),
		ContributedUnits: make([]float64, n),
	}
}

// Value returns the portfolio value and the per-instrument values at prices.
func (s *SimulationState) Value(prices []float64) (float64, []float64) {
	vals := make([]float64, len(s.Units))
	total := 0.0
	for i, u := range s.Units {
		vals[i] = u * prices[i]
		total += vals[i]
	}
	return total, vals
}
