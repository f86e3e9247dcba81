// Package handler provides HTTP handlers for recalculation endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dapplion/review-royale/internal/recalc/service"
)

// Handler handles HTTP requests for recalculation endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new recalculation handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Recalculate handles POST /recalculate request.
func (h *Handler) Recalculate(c *gin.Context) {
	report, err := h.service.RecalculateAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRecalcBusy) {
			errorResponse(c, "SYNC_IN_PROGRESS", "recalculation blocked by active sync", http.StatusConflict)
			return
		}
		h.logger.Errorw("full recalculation failed", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repos":         report.Repos,
		"pull_requests": report.PullRequests,
		"events":        report.Events,
		"sessions":      report.Sessions,
		"xp_awarded":    report.XPAwarded,
		"users":         report.Users,
		"duration_ms":   report.Duration.Milliseconds(),
	})
}
