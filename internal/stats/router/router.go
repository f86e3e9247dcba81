// Package router provides stats module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	achievementRepo "github.com/dapplion/review-royale/internal/achievement/repository"
	achievementService "github.com/dapplion/review-royale/internal/achievement/service"
	sessionRepo "github.com/dapplion/review-royale/internal/session/repository"
	"github.com/dapplion/review-royale/internal/stats/handler"
	"github.com/dapplion/review-royale/internal/stats/repository"
	"github.com/dapplion/review-royale/internal/stats/service"
	userRepo "github.com/dapplion/review-royale/internal/user/repository"
)

// RegisterRoutes registers stats module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	svc := service.New(
		sessionRepo.New(db, logger),
		userRepo.New(db, logger),
		repository.New(db, logger),
		achievementService.New(achievementRepo.New(db, logger), logger),
		logger,
	)
	h := handler.New(svc, logger)

	r.GET("/sessions", h.Sessions)
	r.GET("/users/aggregate", h.Aggregate)
	r.GET("/leaderboard", h.Leaderboard)
}
