package model

import (
	"errors"
	"fmt"
	"math"
)

const allocationTolerance = 1e-6

// SimulationConfig defines how an investor behaves inside every rolling window.
// Units:
// - WindowYears, TransitionYears: whole years
// - allocations, thresholds and step-up: percent (0..100)
// - ContributionAmount: currency per contribution (SIP) or the one-time amount (lumpsum)
type SimulationConfig struct {
	Mode        Mode `json:"mode" yaml:"mode" toml:"mode"`
	WindowYears int  `json:"window_years" yaml:"window_years" toml:"window_years"`

	StartAllocationPercent []float64 `json:"start_allocation" yaml:"start_allocation" toml:"start_allocation"`
	EndAllocationPercent   []float64 `json:"end_allocation,omitempty" yaml:"end_allocation,omitempty" toml:"end_allocation,omitempty"`

	RebalanceEnabled          bool    `json:"rebalance_enabled" yaml:"rebalance_enabled" toml:"rebalance_enabled"`
	RebalanceThresholdPercent float64 `json:"rebalance_threshold" yaml:"rebalance_threshold" toml:"rebalance_threshold"`

	StepUpEnabled       bool    `json:"step_up_enabled" yaml:"step_up_enabled" toml:"step_up_enabled"`
	StepUpAnnualPercent float64 `json:"step_up_percent" yaml:"step_up_percent" toml:"step_up_percent"`

	ContributionAmount float64 `json:"contribution_amount" yaml:"contribution_amount" toml:"contribution_amount"`

	TransitionEnabled bool `json:"transition_enabled" yaml:"transition_enabled" toml:"transition_enabled"`
	TransitionYears   int  `json:"transition_years" yaml:"transition_years" toml:"transition_years"`
}

// WindowMonths is the rolling window length in calendar months.
func (c SimulationConfig) WindowMonths() int {
	return c.WindowYears * 12
}

// EffectiveMode treats an empty mode as SIP.
func (c SimulationConfig) EffectiveMode() Mode {
	if c.Mode == "" {
		return ModeSIP
	}
	return c.Mode
}

// Validate checks the configuration once before a run; the engine treats it
// as read-only afterwards.
func (c SimulationConfig) Validate() error {
	switch c.EffectiveMode() {
	case ModeSIP, ModeLumpsum:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.WindowYears < 1 {
		return errors.New("window_years must be >= 1")
	}
	if c.ContributionAmount <= 0 || math.IsNaN(c.ContributionAmount) || math.IsInf(c.ContributionAmount, 0) {
		return errors.New("contribution_amount must be > 0")
	}
	if err := validateAllocation("start_allocation", c.StartAllocationPercent); err != nil {
		return err
	}
	if c.RebalanceThresholdPercent < 0 || c.RebalanceThresholdPercent > 100 {
		return errors.New("rebalance_threshold must be in [0, 100]")
	}
	if c.StepUpAnnualPercent < 0 {
		return errors.New("step_up_percent must be >= 0")
	}
	if c.TransitionEnabled {
		if len(c.EndAllocationPercent) != len(c.StartAllocationPercent) {
			return errors.New("end_allocation must have one entry per instrument when transition is enabled")
		}
		if err := validateAllocation("end_allocation", c.EndAllocationPercent); err != nil {
			return err
		}
		if c.TransitionYears <= 0 || c.TransitionYears > c.WindowYears {
			return errors.New("transition_years must satisfy 0 < transition_years <= window_years")
		}
	}
	// Lumpsum windows make a single investment; the periodic policies have
	// nothing to act on, so they are refused rather than silently ignored.
	if c.EffectiveMode() == ModeLumpsum {
		if c.RebalanceEnabled {
			return errors.New("rebalancing is not supported in lumpsum mode")
		}
		if c.StepUpEnabled {
			return errors.New("step-up is not supported in lumpsum mode")
		}
		if c.TransitionEnabled {
			return errors.New("allocation transition is not supported in lumpsum mode")
		}
	}
	return nil
}

func validateAllocation(name string, alloc []float64) error {
	if len(alloc) == 0 {
		return fmt.Errorf("%s must list at least one instrument", name)
	}
	sum := 0.0
	for i, a := range alloc {
		if a < 0 || math.IsNaN(a) {
			return fmt.Errorf("%s[%d] must be >= 0", name, i)
		}
		sum += a
	}
	if math.Abs(sum-100) > allocationTolerance {
		return fmt.Errorf("%s must sum to 100 (got %.6f)", name, sum)
	}
	return nil
}
