package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"

	"github.com/gin-gonic/gin"
)

const defaultInstrumentLimit = 50

// InstrumentHandler serves the scheme catalog.
type InstrumentHandler struct {
	path string
}

// NewInstrumentHandler reads the catalog from path on every request, so a
// refresh by update-instruments shows up without a restart.
func NewInstrumentHandler(path string) *InstrumentHandler {
	return &InstrumentHandler{path: path}
}

// ListInstruments handles GET /api/v1/instruments
func (h *InstrumentHandler) ListInstruments(c *gin.Context) {
	var q models.InstrumentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if q.Limit <= 0 {
		q.Limit = defaultInstrumentLimit
	}

	cat, err := data.LoadCatalog(h.path)
	if err != nil {
		// No catalog yet is not an error.
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusOK, gin.H{"instruments": []models.InstrumentInfo{}, "count": 0})
			return
		}
		respondError(c, http.StatusInternalServerError, "CATALOG_LOAD_ERROR", err.Error(), nil)
		return
	}

	schemes := cat.Search(q.Q, q.Limit)
	out := make([]models.InstrumentInfo, len(schemes))
	for i, s := range schemes {
		out[i] = models.InstrumentInfo{Code: s.Code, Name: s.Name, Source: s.Source, Category: s.Category}
	}
	c.JSON(http.StatusOK, gin.H{
		"instruments": out,
		"updated_at":  cat.UpdatedAt,
		"count":       len(out),
	})
}
