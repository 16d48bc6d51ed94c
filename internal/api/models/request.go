package models

import "github.com/asrajavel/portfolio-simulator-sub000/internal/config"

// SimulateRequest is the body of POST /api/v1/simulate. It mirrors the
// on-disk config: shared simulation settings and one or more portfolios.
type SimulateRequest struct {
	Label string `json:"label,omitempty"`
	// Optional preset name (file under PRESET_DIR, without extension).
	// Explicit simulation fields override the preset's; its portfolios are
	// used when the request lists none.
	Preset     string                   `json:"preset,omitempty"`
	Simulation config.SimulationConfig  `json:"simulation"`
	Portfolios []config.PortfolioConfig `json:"portfolios"`
	Options    SimulateOptions          `json:"options,omitempty"`
}

// SimulateOptions tunes what a simulation returns.
type SimulateOptions struct {
	Exec           string `json:"exec,omitempty"`            // "fast" (default) or "detailed"
	IncludeResults bool   `json:"include_results,omitempty"` // per-window results
	IncludeLedger  bool   `json:"include_ledger,omitempty"`  // ledgers inside results
	Persist        bool   `json:"persist,omitempty"`
	// Requests sharing a session supersede each other: a newer one cancels
	// the older, which then answers 409.
	Session string `json:"session,omitempty"`
}

// RankRequest ranks the request's portfolios by median rolling XIRR.
type RankRequest struct {
	Preset     string                   `json:"preset,omitempty"`
	Simulation config.SimulationConfig  `json:"simulation"`
	Portfolios []config.PortfolioConfig `json:"portfolios"`
	Limit      int                      `json:"limit,omitempty"` // 0 = all
}

// WindowsQuery filters GET /api/v1/simulate/:id/windows.
type WindowsQuery struct {
	Portfolio string `form:"portfolio"`
	Ledger    bool   `form:"ledger"`
}

// InstrumentsQuery filters GET /api/v1/instruments.
type InstrumentsQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit"` // default: 50
}
