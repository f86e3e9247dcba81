// Package handler provides HTTP handlers for stats endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	statsModel "github.com/dapplion/review-royale/internal/stats/model"
	"github.com/dapplion/review-royale/internal/stats/service"
	userModel "github.com/dapplion/review-royale/internal/user/model"
)

// Handler handles HTTP requests for stats endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new stats handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Sessions handles GET /sessions request. The user query parameter is
// required; repo and period are optional filters.
func (h *Handler) Sessions(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		errorResponse(c, "INVALID_REQUEST", "user query parameter is required", http.StatusBadRequest)
		return
	}

	period, err := statsModel.ParsePeriod(c.Query("period"))
	if err != nil {
		errorResponse(c, "INVALID_REQUEST", "period must be one of: day, week, month, year, all", http.StatusBadRequest)
		return
	}

	sessions, err := h.service.Sessions(c.Request.Context(), userID, c.Query("repo"), period)
	if err != nil {
		h.logger.Errorw("failed to list sessions", "user_id", userID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Aggregate handles GET /users/aggregate request.
func (h *Handler) Aggregate(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		errorResponse(c, "INVALID_REQUEST", "user query parameter is required", http.StatusBadRequest)
		return
	}

	period, err := statsModel.ParsePeriod(c.Query("period"))
	if err != nil {
		errorResponse(c, "INVALID_REQUEST", "period must be one of: day, week, month, year, all", http.StatusBadRequest)
		return
	}

	aggregate, err := h.service.Aggregate(c.Request.Context(), userID, c.Query("repo"), period)
	if err != nil {
		if errors.Is(err, userModel.ErrUserNotFound) {
			notFoundResponse(c, "user not found")
			return
		}
		h.logger.Errorw("failed to load user aggregate", "user_id", userID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, aggregate)
}

// Leaderboard handles GET /leaderboard request. Supported periods are
// day, week, month, year and all (default).
func (h *Handler) Leaderboard(c *gin.Context) {
	period, err := statsModel.ParsePeriod(c.Query("period"))
	if err != nil {
		errorResponse(c, "INVALID_REQUEST", "period must be one of: day, week, month, year, all", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			errorResponse(c, "INVALID_REQUEST", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.service.Leaderboard(c.Request.Context(), period, limit)
	if err != nil {
		h.logger.Errorw("failed to build leaderboard", "period", period, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":  period,
		"entries": entries,
	})
}
