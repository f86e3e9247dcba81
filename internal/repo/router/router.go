// Package router provides repository module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	achievementRepo "github.com/dapplion/review-royale/internal/achievement/repository"
	achievementService "github.com/dapplion/review-royale/internal/achievement/service"
	classifierRepo "github.com/dapplion/review-royale/internal/classifier/repository"
	"github.com/dapplion/review-royale/internal/config"
	eventRepo "github.com/dapplion/review-royale/internal/event/repository"
	"github.com/dapplion/review-royale/internal/eventsource/github"
	recalcService "github.com/dapplion/review-royale/internal/recalc/service"
	"github.com/dapplion/review-royale/internal/repo/handler"
	"github.com/dapplion/review-royale/internal/repo/repository"
	"github.com/dapplion/review-royale/internal/repo/service"
	sessionRepo "github.com/dapplion/review-royale/internal/session/repository"
	userRepo "github.com/dapplion/review-royale/internal/user/repository"
)

// RegisterRoutes registers repository module routes and returns the
// sync service for the background scheduler. The lock registry is
// shared with the recalculation module.
func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	locks *service.LockRegistry,
	cfg config.SyncConfig,
	logger *zap.SugaredLogger,
) service.Service {
	achievements := achievementService.New(achievementRepo.New(db, logger), logger)
	rebuilder := recalcService.New(
		db,
		eventRepo.New(db, logger),
		sessionRepo.New(db, logger),
		classifierRepo.New(db, logger),
		userRepo.New(db, logger),
		achievements,
		nil, // incremental rebuilds run under the per-repo sync lock
		cfg.Concurrency,
		logger,
	)

	source := github.New(cfg.GitHubToken, cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	svc := service.New(
		repository.New(db, logger),
		eventRepo.New(db, logger),
		source,
		rebuilder,
		locks,
		cfg,
		logger,
	)
	h := handler.New(svc, logger)

	r.POST("/repos/track", h.Track)
	r.POST("/repos/sync", h.Sync)
	r.GET("/repos/status", h.Status)

	return svc
}
