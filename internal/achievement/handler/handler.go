// Package handler provides HTTP handlers for achievement endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dapplion/review-royale/internal/achievement/service"
)

// Handler handles HTTP requests for achievement endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new achievement handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// ListUserAchievements handles GET /achievements request. The user query
// parameter is required.
func (h *Handler) ListUserAchievements(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		errorResponse(c, "INVALID_REQUEST", "user query parameter is required", http.StatusBadRequest)
		return
	}

	unlocks, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list achievements", "user_id", userID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": unlocks})
}

// ListPending handles GET /achievements/pending request. The optional
// limit query parameter caps the batch.
func (h *Handler) ListPending(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			errorResponse(c, "INVALID_REQUEST", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	unlocks, err := h.service.ListPending(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorw("failed to list pending achievements", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": unlocks})
}

type markNotifiedRequest struct {
	UserID        string `json:"user_id"        binding:"required"`
	AchievementID string `json:"achievement_id" binding:"required"`
}

// MarkNotified handles POST /achievements/notified request.
func (h *Handler) MarkNotified(c *gin.Context) {
	var req markNotifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.MarkNotified(c.Request.Context(), req.UserID, req.AchievementID); err != nil {
		h.logger.Errorw("failed to mark achievement notified",
			"user_id", req.UserID,
			"achievement_id", req.AchievementID,
			"error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
