// Package router provides achievement module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dapplion/review-royale/internal/achievement/handler"
	"github.com/dapplion/review-royale/internal/achievement/repository"
	"github.com/dapplion/review-royale/internal/achievement/service"
)

// RegisterRoutes registers achievement module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	r.GET("/achievements", h.ListUserAchievements)
	r.GET("/achievements/pending", h.ListPending)
	r.POST("/achievements/notified", h.MarkNotified)
}
