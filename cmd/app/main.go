package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bananas_server/internal/config"
	"bananas_server/internal/db"
	"bananas_server/internal/game"
	httpServer "bananas_server/internal/http"
	"bananas_server/internal/http/handlers"
	"bananas_server/internal/http/middleware"
	"bananas_server/internal/logger"
	"bananas_server/internal/repository"
	"bananas_server/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	checks := make(map[string]handlers.Pinger)
	hubOpts := ws.Options{
		GracePeriod: cfg.GracePeriod,
		Validator:   game.Validator{Spacing: cfg.TileSpacing, Tolerance: cfg.TileTolerance},
		ActionRate:  rate.Limit(cfg.ActionRate),
		ActionBurst: cfg.ActionBurst,
	}
	deps := httpServer.Deps{Config: cfg, Checks: checks, Version: version}

	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Warn("results log disabled", "error", err)
		} else {
			defer pool.Close()
			results := repository.NewGameResultRepository(pool)
			hubOpts.Results = results
			deps.Results = results
			checks["database"] = pool
		}
	}

	limiter := middleware.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if limiter != nil {
		defer limiter.Close()
		checks["redis"] = limiter
	}
	deps.Limiter = limiter

	hub := ws.NewHub(hubOpts)
	deps.Hub = hub

	if !cfg.LogJSON && cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpServer.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "grace", cfg.GracePeriod)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := hub.Shutdown(ctx); err != nil {
		logger.Error("rooms did not stop in time", "error", err)
	}

	logger.Info("server exited")
}
