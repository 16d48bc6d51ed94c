package model

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientData aborts a whole simulation: an instrument has fewer than 2 prices.
	ErrInsufficientData = errors.New("insufficient price data")
	// ErrWindowNotComputable marks an anchor whose window starts before the available history.
	ErrWindowNotComputable = errors.New("window not computable")
	// ErrMissingPrice marks an anchor that needed a price the series does not have.
	ErrMissingPrice = errors.New("missing price point")
)

// WindowResult is the outcome of one rolling window, keyed by its anchor (end) date.
type WindowResult struct {
	Anchor time.Time `json:"anchor"`
	Start  time.Time `json:"start"`

	XIRR              float64  `json:"xirr"`
	VolatilityPercent *float64 `json:"volatility_percent,omitempty"`

	Invested   float64 `json:"invested"`
	FinalValue float64 `json:"final_value"`

	Ledger []LedgerEntry `json:"ledger,omitempty"`
}

// SkipReason classifies why an anchor date produced no result.
type SkipReason string

const (
	SkipNotComputable SkipReason = "not_computable"
	SkipMissingPrice  SkipReason = "missing_price"
	SkipSolver        SkipReason = "solver"
)

// Metrics is per-run instrumentation returned next to the results.
type Metrics struct {
	Anchors  int                `json:"anchors"`
	Computed int                `json:"computed"`
	Skipped  map[SkipReason]int `json:"skipped"`

	BuildTime      time.Duration `json:"build_time"`
	SolveTime      time.Duration `json:"solve_time"`
	VolatilityTime time.Duration `json:"volatility_time"`
	WallTime       time.Duration `json:"wall_time"`
}

// Merge adds o's counters and timings into m.
func (m *Metrics) Merge(o Metrics) {
	m.Anchors += o.Anchors
	m.Computed += o.Computed
	if m.Skipped == nil {
		m.Skipped = map[SkipReason]int{}
	}
	for k, v := range o.Skipped {
		m.Skipped[k] += v
	}
	m.BuildTime += o.BuildTime
	m.SolveTime += o.SolveTime
	m.VolatilityTime += o.VolatilityTime
}
