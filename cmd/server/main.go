// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	achievementRouter "github.com/dapplion/review-royale/internal/achievement/router"
	classifierRouter "github.com/dapplion/review-royale/internal/classifier/router"
	"github.com/dapplion/review-royale/internal/config"
	"github.com/dapplion/review-royale/internal/database/database"
	"github.com/dapplion/review-royale/internal/database/migrate"
	healthHandler "github.com/dapplion/review-royale/internal/health"
	"github.com/dapplion/review-royale/internal/middleware"
	recalcRouter "github.com/dapplion/review-royale/internal/recalc/router"
	repoRouter "github.com/dapplion/review-royale/internal/repo/router"
	"github.com/dapplion/review-royale/internal/repo/scheduler"
	repoService "github.com/dapplion/review-royale/internal/repo/service"
	statsRouter "github.com/dapplion/review-royale/internal/stats/router"
	"github.com/dapplion/review-royale/pkg/logger"
	"github.com/dapplion/review-royale/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, err := database.New()
	if err != nil {
		zapLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			zapLogger.Errorw("failed to close database", "error", err)
		}
	}()

	if err := migrate.Migrate(db); err != nil {
		zapLogger.Fatalw("failed to apply migrations", "error", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Logger(zapLogger))
	r.Use(middleware.Recovery(zapLogger))

	health := healthHandler.New(db, zapLogger)
	r.GET("/health", health.Check)
	r.GET("/metrics", metrics.Handler())

	locks := repoService.NewLockRegistry()
	syncService := repoRouter.RegisterRoutes(r, db, locks, cfg.Sync, zapLogger)
	achievementRouter.RegisterRoutes(r, db, zapLogger)
	classifierRouter.RegisterRoutes(r, db, cfg.Classifier, zapLogger)
	recalcRouter.RegisterRoutes(r, db, locks, cfg.Sync.Concurrency, zapLogger)
	statsRouter.RegisterRoutes(r, db, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sync.SchedulerEnabled {
		sched := scheduler.New(syncService, cfg.Sync.Interval, zapLogger)
		go sched.Run(ctx)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Infow("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Errorw("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Errorw("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
