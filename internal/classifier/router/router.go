// Package router provides classification module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dapplion/review-royale/internal/classifier/handler"
	"github.com/dapplion/review-royale/internal/classifier/openai"
	"github.com/dapplion/review-royale/internal/classifier/repository"
	"github.com/dapplion/review-royale/internal/classifier/service"
	"github.com/dapplion/review-royale/internal/config"
)

// RegisterRoutes registers classification module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.ClassifierConfig, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	backend := openai.New(cfg.OpenAIAPIKey, cfg.BaseURL, cfg.Model, cfg.HTTPTimeout, logger)
	svc := service.New(repo, backend, logger)
	h := handler.New(svc, cfg.BatchSize, logger)

	r.POST("/categorize", h.Categorize)
}
