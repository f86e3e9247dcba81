// Package handler provides HTTP handlers for classification endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	classifierModel "github.com/dapplion/review-royale/internal/classifier/model"
	"github.com/dapplion/review-royale/internal/classifier/service"
)

// Handler handles HTTP requests for classification endpoints.
type Handler struct {
	service   service.Service
	batchSize int
	logger    *zap.SugaredLogger
}

// New creates a new classification handler instance.
func New(svc service.Service, batchSize int, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, batchSize: batchSize, logger: logger}
}

type categorizeRequest struct {
	BatchSize int `json:"batch_size"`
}

// Categorize handles POST /categorize request. An optional batch_size
// overrides the configured default.
func (h *Handler) Categorize(c *gin.Context) {
	batchSize := h.batchSize
	if c.Request.ContentLength > 0 {
		var req categorizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
			return
		}
		if req.BatchSize > 0 {
			batchSize = req.BatchSize
		}
	}

	stats, err := h.service.ClassifyPending(c.Request.Context(), batchSize)
	if err != nil {
		if errors.Is(err, classifierModel.ErrBackendDisabled) {
			errorResponse(c, "CLASSIFIER_DISABLED", "no classification backend configured", http.StatusConflict)
			return
		}
		h.logger.Errorw("classification run failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, stats)
}
