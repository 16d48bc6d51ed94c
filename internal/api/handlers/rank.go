package handlers

import (
	"net/http"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/runner"

	"github.com/gin-gonic/gin"
)

// RankHandler handles ranking-related requests
type RankHandler struct {
	deps Deps
}

// NewRankHandler creates a new rank handler
func NewRankHandler(deps Deps) *RankHandler {
	return &RankHandler{deps: deps}
}

// RankPortfolios handles POST /api/v1/rank
func (h *RankHandler) RankPortfolios(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	ctx := c.Request.Context()

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

	resp := models.RankResponse{}
	byName := map[string][]model.WindowResult{}
	for i, res := range runner.New(h.deps.Sim).Run(ctx, jobs, model.ExecFast) {
		if res.Err != nil {
			resp.Failed = append(resp.Failed, portfolioResult(res, jobs[i].Inputs.Config, false, false))
			continue
		}
		byName[res.Name] = res.Run.Results
	}

	ranked := analysis.RankPortfolios(byName)
	if req.Limit > 0 && req.Limit < len(ranked) {
		ranked = ranked[:req.Limit]
	}
	resp.Rankings = ranked
	c.JSON(http.StatusOK, resp)
}
