package strategy

import (
	"fmt"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// Window describes one rolling window: money enters on ContributionDates
// (ascending, the first one equals Start) and everything is liquidated on Anchor.
type Window struct {
	Start             time.Time
	Anchor            time.Time
	ContributionDates []time.Time
}

// Strategy decides when money enters a window ending on anchor.
// ok is false when the window would need history before firstDate.
type Strategy interface {
	Name() string
	Window(anchor, firstDate time.Time) (w Window, ok bool)
}

// ForConfig returns the strategy matching the configured mode.
func ForConfig(cfg model.SimulationConfig) (Strategy, error) {
	switch cfg.EffectiveMode() {
	case model.ModeSIP:
		return &SIPStrategy{Params: SIPParams{Months: cfg.WindowMonths()}}, nil
	case model.ModeLumpsum:
		return &LumpsumStrategy{Params: LumpsumParams{Months: cfg.WindowMonths()}}, nil
	default:
		return nil, fmt.Errorf("unsupported mode %q", cfg.Mode)
	}
}

// LumpsumParams configures a single investment made Months before the anchor.
type LumpsumParams struct {
	Months int
}

// LumpsumStrategy invests everything on the window's first day.
type LumpsumStrategy struct {
	Params LumpsumParams
}

func (s *LumpsumStrategy) Name() string { return string(model.ModeLumpsum) }

func (s *LumpsumStrategy) Window(anchor, firstDate time.Time) (Window, bool) {
	anchor = model.Day(anchor)
	start := AddMonthsClamped(anchor, -s.Params.Months, anchor.Day())
	if start.Before(model.Day(firstDate)) {
		return Window{}, false
	}
	return Window{Start: start, Anchor: anchor, ContributionDates: []time.Time{start}}, true
}

// ParameterInfo describes one tunable of a mode, for listings.
type ParameterInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "float", "int", "bool", "list"
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// ModeInfo describes an investment mode.
type ModeInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// Catalog lists the supported modes and what they can be configured with.
func Catalog() []ModeInfo {
	common := []ParameterInfo{
		{Name: "window_years", Type: "int", Description: "Rolling window length in years", Default: 5},
		{Name: "start_allocation", Type: "list", Description: "Target allocation per instrument in percent (sums to 100)"},
		{Name: "contribution_amount", Type: "float", Description: "Amount invested per contribution (SIP) or once (lumpsum)", Default: 10000.0},
	}
	sip := append([]ParameterInfo{}, common...)
	sip = append(sip,
		ParameterInfo{Name: "rebalance_enabled", Type: "bool", Description: "Rebalance all instruments when drift exceeds the threshold", Default: false},
		ParameterInfo{Name: "rebalance_threshold", Type: "float", Description: "Allowed drift from target in percentage points", Default: 5.0},
		ParameterInfo{Name: "step_up_enabled", Type: "bool", Description: "Increase the contribution every investment year", Default: false},
		ParameterInfo{Name: "step_up_percent", Type: "float", Description: "Yearly contribution increase in percent", Default: 10.0},
		ParameterInfo{Name: "transition_enabled", Type: "bool", Description: "Glide from start_allocation to end_allocation near the end of the window", Default: false},
		ParameterInfo{Name: "transition_years", Type: "int", Description: "Length of the glide path in years", Default: 3},
		ParameterInfo{Name: "end_allocation", Type: "list", Description: "Allocation reached at the end of the glide path"},
	)
	return []ModeInfo{
		{
			Name:        string(model.ModeSIP),
			Description: "Monthly contributions on the anchor's day of month, with optional rebalancing, step-up and glide path.",
			Parameters:  sip,
		},
		{
			Name:        string(model.ModeLumpsum),
			Description: "One investment at the start of the window, held until the anchor date.",
			Parameters:  common,
		},
	}
}
