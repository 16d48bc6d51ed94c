package models

import (
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/returns"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/strategy"
)

// SimulateResponse is returned by POST /api/v1/simulate.
type SimulateResponse struct {
	ID         string            `json:"id,omitempty"`
	Status     string            `json:"status"`
	Exec       model.ExecMode    `json:"exec"`
	Generation uint64            `json:"generation,omitempty"`
	Portfolios []PortfolioResult `json:"portfolios"`
}

// PortfolioResult is one portfolio's outcome. Error is set instead of the
// other fields when its simulation failed.
type PortfolioResult struct {
	Name      string                 `json:"name"`
	Error     *ErrorDetail           `json:"error,omitempty"`
	Summary   analysis.Summary       `json:"summary"`
	Metrics   model.Metrics          `json:"metrics"`
	FirstDate time.Time              `json:"first_date,omitempty"`
	LastDate  time.Time              `json:"last_date,omitempty"`
	Results   []model.WindowResult   `json:"results,omitempty"`
	Config    model.SimulationConfig `json:"config"`
}

// RunResponse is a stored run with its per-portfolio summaries.
type RunResponse struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Label      string            `json:"label,omitempty"`
	Exec       model.ExecMode    `json:"exec"`
	Portfolios []PortfolioResult `json:"portfolios"`
}

// WindowsResponse lists stored window results.
type WindowsResponse struct {
	ID        string               `json:"id"`
	Portfolio string               `json:"portfolio"`
	Count     int                  `json:"count"`
	Windows   []model.WindowResult `json:"windows"`
}

// WindowDetailResponse is an on-demand recomputation of one window with
// daily marks and its valuation path.
type WindowDetailResponse struct {
	ID         string              `json:"id"`
	Portfolio  string              `json:"portfolio"`
	Window     model.WindowResult  `json:"window"`
	Valuations []returns.Valuation `json:"valuations"`
}

// RunListResponse lists stored runs, newest first.
type RunListResponse struct {
	Runs  []RunInfo `json:"runs"`
	Count int       `json:"count"`
}

// RunInfo is a stored run without its results.
type RunInfo struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Label      string         `json:"label,omitempty"`
	Exec       model.ExecMode `json:"exec"`
	Portfolios []string       `json:"portfolios"`
}

// RankResponse is returned by POST /api/v1/rank.
type RankResponse struct {
	Rankings []analysis.RankedPortfolio `json:"rankings"`
	Failed   []PortfolioResult          `json:"failed,omitempty"`
}

// ModesResponse lists investment modes.
type ModesResponse struct {
	Modes []strategy.ModeInfo `json:"modes"`
}

// PresetInfo describes a preset file.
type PresetInfo struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	File       string                  `json:"file"`
	Simulation config.SimulationConfig `json:"simulation"`
	Portfolios []PresetPortfolioInfo   `json:"portfolios"`
}

// PresetPortfolioInfo summarizes one preset portfolio.
type PresetPortfolioInfo struct {
	Name        string   `json:"name"`
	Instruments []string `json:"instruments"`
}

// InstrumentInfo is one catalog entry.
type InstrumentInfo struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
