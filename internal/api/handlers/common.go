package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/runner"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/store"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators shared by the handlers.
type Deps struct {
	Sim       backtest.Simulator
	Store     *store.Store // nil disables persistence
	Resolver  *data.Resolver
	PresetDir string
}

// PresetDirFromEnv returns PRESET_DIR, or ./presets.
func PresetDirFromEnv() string {
	if dir := os.Getenv("PRESET_DIR"); dir != "" {
		return dir
	}
	return "./presets"
}

// errBadRequest marks errors caused by the request itself.
type errBadRequest struct {
	code string
	err  error
}

func (e *errBadRequest) Error() string { return e.err.Error() }
func (e *errBadRequest) Unwrap() error { return e.err }

func badRequest(code, format string, args ...any) error {
	return &errBadRequest{code: code, err: fmt.Errorf(format, args...)}
}

func respondError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondErr maps err onto a status and error code.
func respondErr(c *gin.Context, err error) {
	var br *errBadRequest
	var se *data.SourceError
	switch {
	case errors.As(err, &br):
		respondError(c, http.StatusBadRequest, br.code, br.Error(), nil)
	case errors.As(err, &se):
		status := http.StatusBadGateway
		switch se.StatusCode {
		case http.StatusNotFound:
			status = http.StatusBadRequest
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		}
		respondError(c, status, se.Code, err.Error(), map[string]any{
			"status_code": se.StatusCode,
			"retry_after": se.RetryAfter,
		})
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "RUN_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, runner.ErrSuperseded):
		respondError(c, http.StatusConflict, "SUPERSEDED", err.Error(), nil)
	case errors.Is(err, model.ErrInsufficientData):
		respondError(c, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusServiceUnavailable, "CANCELLED", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}

func parseExec(s string) (model.ExecMode, error) {
	switch model.ExecMode(s) {
	case "", model.ExecFast:
		return model.ExecFast, nil
	case model.ExecDetailed:
		return model.ExecDetailed, nil
	default:
		return "", badRequest("INVALID_EXEC", "exec must be %q or %q, got %q", model.ExecFast, model.ExecDetailed, s)
	}
}

// buildConfig turns request fields into a validated config. File sources
// are only honoured when they come from a preset or allowFiles is set.
func buildConfig(presetDir, preset string, sim config.SimulationConfig, portfolios []config.PortfolioConfig, allowFiles bool) (*config.Config, error) {
	for _, p := range portfolios {
		for _, inst := range p.Instruments {
			if !allowFiles && (inst.Source == config.SourceCSV || inst.Source == config.SourceJSON || inst.File != "") {
				return nil, badRequest("FILE_SOURCE_FORBIDDEN", "portfolio %q: file sources are only available through presets", p.Name)
			}
		}
	}

	c := &config.Config{Simulation: sim, Portfolios: portfolios}
	if preset != "" {
		p, err := loadPreset(presetDir, preset)
		if err != nil {
			return nil, err
		}
		c.Name = p.Name
		c.Simulation = config.MergeSimulation(p.Simulation, c.Simulation)
		if len(c.Portfolios) == 0 {
			c.Portfolios = p.Portfolios
		}
	}

	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, badRequest("INVALID_CONFIG", "%s", err.Error())
	}
	return c, nil
}

func loadPreset(dir, name string) (*config.Config, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, badRequest("INVALID_PRESET", "invalid preset name %q", name)
	}
	for _, ext := range []string{".yaml", ".yml", ".toml", ".json"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		c, err := config.LoadUnchecked(path)
		if err != nil {
			return nil, badRequest("INVALID_PRESET", "preset %q: %v", name, err)
		}
		return c, nil
	}
	return nil, badRequest("PRESET_NOT_FOUND", "preset %q not found", name)
}

// resolveJobs loads the price histories of every portfolio.
func resolveJobs(ctx context.Context, r *data.Resolver, c *config.Config) ([]runner.Job, error) {
	jobs := make([]runner.Job, 0, len(c.Portfolios))
	for _, p := range c.Portfolios {
		in, err := r.Inputs(ctx, c, p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, runner.Job{Name: p.Name, Inputs: in})
	}
	return jobs, nil
}
