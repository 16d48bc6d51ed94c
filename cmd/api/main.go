package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/api"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/api/handlers"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest/backtestobs"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Persistence is optional; without a store the API still simulates.
	var st *store.Store
	if dbPath := dbPathFromEnv(); dbPath != "" {
		s, err := store.Open(dbPath)
		if err != nil {
			logger.ErrorWithErr(ctx, "Run store unavailable, persistence disabled", err, "path", dbPath)
		} else {
			st = s
			defer st.Close()
			logger.Info(ctx, "Run store opened", "path", dbPath)
		}
	}

	router := api.NewRouter(api.Options{
		Deps: handlers.Deps{
			Sim:       backtestobs.Wrap(backtest.New()),
			Store:     st,
			Resolver:  data.NewResolver(os.Getenv("MFAPI_BASE_URL")),
			PresetDir: handlers.PresetDirFromEnv(),
		},
		CatalogPath: data.DefaultCatalogPath(),
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting API server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.ErrorWithErr(ctx, "API server failed", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "API server shutdown", err)
	}
	if err := logger.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}
}

// dbPathFromEnv returns PORTFOLIO_DB, the default path when unset, or ""
// when persistence is switched off with PORTFOLIO_DB=off.
func dbPathFromEnv() string {
	switch p := os.Getenv("PORTFOLIO_DB"); p {
	case "":
		return "./data/runs.sqlite"
	case "off":
		return ""
	default:
		return p
	}
}
