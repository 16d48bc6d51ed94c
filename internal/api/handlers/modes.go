package handlers

import (
	"net/http"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/models"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/strategy"

	"github.com/gin-gonic/gin"
)

// ListModes handles GET /api/v1/modes
func ListModes(c *gin.Context) {
	c.JSON(http.StatusOK, models.ModesResponse{Modes: strategy.Catalog()})
}
