package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"

	"github.com/gin-gonic/gin"
)

// PresetHandler lists the portfolio presets found in a directory.
type PresetHandler struct {
	dir string
}

// NewPresetHandler creates a preset handler over dir.
func NewPresetHandler(dir string) *PresetHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &PresetHandler{dir: dir}
}

// ListPresets handles GET /api/v1/presets. A missing directory yields an
// empty list; unreadable files are skipped.
func (h *PresetHandler) ListPresets(c *gin.Context) {
	ctx := c.Request.Context()
	presets, errs := config.ListPresets(h.dir)
	for _, err := range errs {
		logger.Warn(ctx, "skipping preset", "dir", h.dir, "error", err.Error())
	}

	out := make([]models.PresetInfo, 0, len(presets))
	for _, p := range presets {
		info := models.PresetInfo{
			ID:         strings.TrimSuffix(p.File, filepath.Ext(p.File)),
			Name:       p.Name,
			File:       p.File,
			Simulation: p.Config.Simulation,
		}
		p.Config.ApplyDefaults()
		for _, port := range p.Config.Portfolios {
			pi := models.PresetPortfolioInfo{Name: port.Name}
			for _, inst := range port.Instruments {
				pi.Instruments = append(pi.Instruments, inst.Name)
			}
			info.Portfolios = append(info.Portfolios, pi)
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"presets": out, "count": len(out)})
}
