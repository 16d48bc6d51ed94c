package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/runner"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/store"

	"github.com/gin-gonic/gin"
)

// SimulateHandler runs rolling simulations.
type SimulateHandler struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the runner shared by requests with the same session ID. It
// lives while at least one of them is in flight.
type session struct {
	runner *runner.Runner
	active int
}

// NewSimulateHandler creates a new simulate handler
func NewSimulateHandler(deps Deps) *SimulateHandler {
	return &SimulateHandler{deps: deps, sessions: map[string]*session{}}
}

// acquire returns the session's runner and registers one more request on it.
// Every acquire must be paired with a release.
func (h *SimulateHandler) acquire(id string) *runner.Runner {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		s = &session{runner: runner.New(h.deps.Sim)}
		h.sessions[id] = s
	}
	s.active++
	return s.runner
}

// release drops the session once its last request is done.
func (h *SimulateHandler) release(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return
	}
	if s.active--; s.active <= 0 {
		delete(h.sessions, id)
	}
}

func (h *SimulateHandler) sessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Simulate handles POST /api/v1/simulate
func (h *SimulateHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	ctx := c.Request.Context()

	exec, err := parseExec(req.Options.Exec)
	if err != nil {
		respondErr(c, err)
		return
	}
	cfg, err := buildConfig(h.deps.PresetDir, req.Preset, req.Simulation, req.Portfolios, false)
	if err != nil {
		respondErr(c, err)
		return
	}
	jobs, err := resolveJobs(ctx, h.deps.Resolver, cfg)
	if err != nil {
		respondErr(c, err)
		return
	}

	var results []runner.Result
	var generation uint64
	if req.Options.Session == "" {
		results = runner.New(h.deps.Sim).Run(ctx, jobs, exec)
	} else {
		r := h.acquire(req.Options.Session)
		batch, err := runner.Await(ctx, r.Submit(ctx, jobs, exec))
		h.release(req.Options.Session)
		if err != nil {
			respondErr(c, err)
			return
		}
		results, generation = batch.Results, batch.Generation
	}

	resp := models.SimulateResponse{
		Status:     "completed",
		Exec:       exec,
		Generation: generation,
		Portfolios: make([]models.PortfolioResult, len(results)),
	}
	for i, res := range results {
		resp.Portfolios[i] = portfolioResult(res, jobs[i].Inputs.Config, req.Options.IncludeResults, req.Options.IncludeLedger)
	}

	if req.Options.Persist {
		if h.deps.Store == nil {
			respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "persistence is not configured", nil)
			return
		}
		// The resolved config is stored so windows can be recomputed without
		// the preset directory.
		stored := models.SimulateRequest{
			Label:      req.Label,
			Simulation: cfg.Simulation,
			Portfolios: cfg.Portfolios,
			Options:    models.SimulateOptions{Exec: string(exec)},
		}
		raw, err := json.Marshal(stored)
		if err != nil {
			respondErr(c, err)
			return
		}
		rec := &store.RunRecord{Label: req.Label, Exec: exec, Request: raw}
		byName := map[string][]model.WindowResult{}
		for i, res := range results {
			if res.Err != nil {
				continue
			}
			rec.Portfolios = append(rec.Portfolios, store.PortfolioRecord{
				Name:    res.Name,
				Config:  jobs[i].Inputs.Config,
				Metrics: res.Run.Metrics,
			})
			byName[res.Name] = res.Run.Results
		}
		if err := h.deps.Store.SaveRun(ctx, rec, byName); err != nil {
			logger.ErrorWithErr(ctx, "failed to persist run", err)
			respondErr(c, err)
			return
		}
		resp.ID = rec.ID
	}

	c.JSON(http.StatusOK, resp)
}

func portfolioResult(res runner.Result, cfg model.SimulationConfig, includeResults, includeLedger bool) models.PortfolioResult {
	out := models.PortfolioResult{Name: res.Name, Config: cfg}
	if res.Err != nil {
		out.Error = &models.ErrorDetail{Code: "SIMULATION_FAILED", Message: res.Err.Error()}
		return out
	}
	out.Summary = analysis.Summarize(res.Run.Results)
	out.Metrics = res.Run.Metrics
	out.FirstDate = res.Run.FirstDate
	out.LastDate = res.Run.LastDate
	if includeResults {
		out.Results = make([]model.WindowResult, len(res.Run.Results))
		copy(out.Results, res.Run.Results)
		if !includeLedger {
			for i := range out.Results {
				out.Results[i].Ledger = nil
			}
		}
	}
	return out
}
