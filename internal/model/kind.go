package model

// Kind tags what a ledger entry did.
// Keep these values stable; they are intended for CSV and JSON output.
type Kind string

const (
	KindContribute   Kind = "contribute"
	KindLiquidate    Kind = "liquidate"
	KindRebalance    Kind = "rebalance"
	KindAnnualAdjust Kind = "annual_adjust"
	KindMark         Kind = "mark"
)

// MovesCash reports whether entries of this kind take part in the cashflow
// timeline. Marks only record a valuation.
func (k Kind) MovesCash() bool {
	return k != KindMark
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindContribute, KindLiquidate, KindRebalance, KindAnnualAdjust, KindMark:
		return true
	default:
		return false
	}
}

// Mode selects how money enters a window.
type Mode string

const (
	ModeSIP     Mode = "sip"
	ModeLumpsum Mode = "lumpsum"
)

// ExecMode selects ledger verbosity. Both modes produce the same returns and
// volatility; detailed additionally records daily mark entries.
type ExecMode string

const (
	ExecFast     ExecMode = "fast"
	ExecDetailed ExecMode = "detailed"
)

// ParseExecMode maps a user-supplied string to an ExecMode, defaulting to fast.
func ParseExecMode(s string) ExecMode {
	if ExecMode(s) == ExecDetailed {
		return ExecDetailed
	}
	return ExecFast
}
