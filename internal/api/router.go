// Package api wires the HTTP handlers into a gin router.
package api

import (
	"net/http"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/handlers"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Options configures NewRouter.
type Options struct {
	handlers.Deps
	CatalogPath string
}

// NewRouter builds the API router.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	simulateHandler := handlers.NewSimulateHandler(opts.Deps)
	runsHandler := handlers.NewRunsHandler(opts.Deps)
	rankHandler := handlers.NewRankHandler(opts.Deps)
	presetHandler := handlers.NewPresetHandler(opts.PresetDir)
	instrumentHandler := handlers.NewInstrumentHandler(opts.CatalogPath)

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok", "persistence": opts.Store != nil}
		if opts.Resolver != nil && opts.Resolver.MFAPI != nil && opts.Resolver.MFAPI.Cache != nil {
			body["price_cache"] = opts.Resolver.MFAPI.Cache.Stats()
		}
		c.JSON(http.StatusOK, body)
	})

	api := router.Group("/api/v1")
	{
		api.POST("/simulate", simulateHandler.Simulate)
		api.GET("/simulate", runsHandler.ListRuns)
		api.GET("/simulate/:id", runsHandler.GetRun)
		api.DELETE("/simulate/:id", runsHandler.DeleteRun)
		api.GET("/simulate/:id/windows", runsHandler.ListWindows)
		api.GET("/simulate/:id/windows/:portfolio/:date", runsHandler.WindowDetail)

		api.POST("/rank", rankHandler.RankPortfolios)

		api.GET("/modes", handlers.ListModes)
		api.GET("/presets", presetHandler.ListPresets)
		api.GET("/instruments", instrumentHandler.ListInstruments)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})

	return router
}
