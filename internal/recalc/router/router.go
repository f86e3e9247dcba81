// Package router provides recalculation module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	achievementRepo "github.com/dapplion/review-royale/internal/achievement/repository"
	achievementService "github.com/dapplion/review-royale/internal/achievement/service"
	classifierRepo "github.com/dapplion/review-royale/internal/classifier/repository"
	eventRepo "github.com/dapplion/review-royale/internal/event/repository"
	"github.com/dapplion/review-royale/internal/recalc/handler"
	"github.com/dapplion/review-royale/internal/recalc/service"
	sessionRepo "github.com/dapplion/review-royale/internal/session/repository"
	userRepo "github.com/dapplion/review-royale/internal/user/repository"
)

// RegisterRoutes registers recalculation module routes. The gate is the
// lock registry shared with the sync module, so a recalculation never
// overlaps a sync pass.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gate service.Gate, concurrency int, logger *zap.SugaredLogger) {
	achievements := achievementService.New(achievementRepo.New(db, logger), logger)
	svc := service.New(
		db,
		eventRepo.New(db, logger),
		sessionRepo.New(db, logger),
		classifierRepo.New(db, logger),
		userRepo.New(db, logger),
		achievements,
		gate,
		concurrency,
		logger,
	)
	h := handler.New(svc, logger)

	r.POST("/recalculate", h.Recalculate)
}
