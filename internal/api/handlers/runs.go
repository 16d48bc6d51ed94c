package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/returns"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/store"

	"github.com/gin-gonic/gin"
)

// RunsHandler serves persisted runs.
type RunsHandler struct {
	deps Deps
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(deps Deps) *RunsHandler {
	return &RunsHandler{deps: deps}
}

func (h *RunsHandler) requireStore(c *gin.Context) bool {
	if h.deps.Store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "persistence is not configured", nil)
		return false
	}
	return true
}

// ListRuns handles GET /api/v1/simulate
func (h *RunsHandler) ListRuns(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.deps.Store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err)
		return
	}

	out := make([]models.RunInfo, len(runs))
	for i, r := range runs {
		out[i] = models.RunInfo{ID: r.ID, CreatedAt: r.CreatedAt, Label: r.Label, Exec: r.Exec}
		for _, p := range r.Portfolios {
			out[i].Portfolios = append(out[i].Portfolios, p.Name)
		}
	}
	c.JSON(http.StatusOK, models.RunListResponse{Runs: out, Count: len(out)})
}

// GetRun handles GET /api/v1/simulate/:id
func (h *RunsHandler) GetRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	ctx := c.Request.Context()
	rec, err := h.deps.Store.GetRun(ctx, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	resp := models.RunResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Label:     rec.Label,
		Exec:      rec.Exec,
	}
	for _, p := range rec.Portfolios {
		windows, err := h.deps.Store.ListWindows(ctx, rec.ID, p.Name, false)
		if err != nil {
			respondErr(c, err)
			return
		}
		resp.Portfolios = append(resp.Portfolios, models.PortfolioResult{
			Name:    p.Name,
			Config:  p.Config,
			Metrics: p.Metrics,
			Summary: analysis.Summarize(windows),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteRun handles DELETE /api/v1/simulate/:id
func (h *RunsHandler) DeleteRun(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	if err := h.deps.Store.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWindows handles GET /api/v1/simulate/:id/windows
func (h *RunsHandler) ListWindows(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var q models.WindowsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	ctx := c.Request.Context()
	rec, err := h.deps.Store.GetRun(ctx, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}

	name := q.Portfolio
	if name == "" {
		if len(rec.Portfolios) != 1 {
			respondError(c, http.StatusBadRequest, "PORTFOLIO_REQUIRED",
				fmt.Sprintf("run has %d portfolios, pass ?portfolio=", len(rec.Portfolios)), nil)
			return
		}
		name = rec.Portfolios[0].Name
	} else if !hasPortfolio(rec, name) {
		respondError(c, http.StatusNotFound, "PORTFOLIO_NOT_FOUND", fmt.Sprintf("portfolio %q not in run", name), nil)
		return
	}

	windows, err := h.deps.Store.ListWindows(ctx, rec.ID, name, q.Ledger)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, models.WindowsResponse{ID: rec.ID, Portfolio: name, Count: len(windows), Windows: windows})
}

// WindowDetail handles GET /api/v1/simulate/:id/windows/:portfolio/:date.
// The window is recomputed in detailed mode from the stored configuration.
func (h *RunsHandler) WindowDetail(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	ctx := c.Request.Context()
	anchor, err := data.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "date must be in YYYY-MM-DD format", nil)
		return
	}
	rec, err := h.deps.Store.GetRun(ctx, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	name := c.Param("portfolio")
	if !hasPortfolio(rec, name) {
		respondError(c, http.StatusNotFound, "PORTFOLIO_NOT_FOUND", fmt.Sprintf("portfolio %q not in run", name), nil)
		return
	}

	var req models.SimulateRequest
	if err := json.Unmarshal(rec.Request, &req); err != nil {
		respondError(c, http.StatusInternalServerError, "CORRUPT_RUN", err.Error(), nil)
		return
	}
	cfg, err := buildConfig(h.deps.PresetDir, "", req.Simulation, req.Portfolios, true)
	if err != nil {
		respondErr(c, err)
		return
	}
	p, _ := cfg.Portfolio(name)
	in, err := h.deps.Resolver.Inputs(ctx, cfg, p)
	if err != nil {
		respondErr(c, err)
		return
	}

	win, err := h.deps.Sim.SimulateOne(ctx, in, anchor)
	if err != nil {
		respondErr(c, err)
		return
	}
	if win == nil {
		respondError(c, http.StatusNotFound, "WINDOW_NOT_COMPUTABLE",
			fmt.Sprintf("no window ends on %s", anchor.Format("2006-01-02")), nil)
		return
	}
	c.JSON(http.StatusOK, models.WindowDetailResponse{
		ID:         rec.ID,
		Portfolio:  name,
		Window:     *win,
		Valuations: returns.ValuationsFromLedger(win.Ledger),
	})
}

func hasPortfolio(rec *store.RunRecord, name string) bool {
	for _, p := range rec.Portfolios {
		if p.Name == name {
			return true
		}
	}
	return false
}
