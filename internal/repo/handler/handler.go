// Package handler provides HTTP handlers for repository endpoints.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dapplion/review-royale/internal/eventsource"
	repoModel "github.com/dapplion/review-royale/internal/repo/model"
	"github.com/dapplion/review-royale/internal/repo/service"
)

// Handler handles HTTP requests for repository endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new repository handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

type trackRequest struct {
	Owner string `json:"owner" binding:"required"`
	Name  string `json:"name"  binding:"required"`
}

// Track handles POST /repos/track request.
func (h *Handler) Track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	repo, err := h.service.Track(c.Request.Context(), req.Owner, req.Name)
	if err != nil {
		if errors.Is(err, repoModel.ErrRepoExists) {
			errorResponse(c, "REPO_EXISTS", "repository already tracked", http.StatusConflict)
			return
		}
		if errors.Is(err, repoModel.ErrInvalidRepoName) {
			errorResponse(c, "INVALID_REQUEST", "owner and name must be non-empty path segments", http.StatusBadRequest)
			return
		}
		h.logger.Errorw("failed to track repository", "owner", req.Owner, "name", req.Name, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"repo": repo})
}

type syncRequest struct {
	Owner string `json:"owner" binding:"required"`
	Name  string `json:"name"  binding:"required"`
	Force bool   `json:"force"`
}

// Sync handles POST /repos/sync request.
func (h *Handler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	report, err := h.service.Sync(c.Request.Context(), req.Owner, req.Name, req.Force)
	if err != nil {
		if errors.Is(err, repoModel.ErrRepoNotFound) {
			notFoundResponse(c, "repository not tracked")
			return
		}
		if errors.Is(err, repoModel.ErrSyncInProgress) {
			errorResponse(c, "SYNC_IN_PROGRESS", "sync already running for this repository", http.StatusConflict)
			return
		}
		if _, ok := eventsource.AsRateLimit(err); ok {
			errorResponse(c, "RATE_LIMITED", "source rate limit exhausted, try again later", http.StatusTooManyRequests)
			return
		}
		h.logger.Errorw("sync failed", "owner", req.Owner, "name", req.Name, "error", err)
		errorResponse(c, "SYNC_FAILED", "sync failed", http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repo":            report.Repo,
		"pull_requests":   report.PullRequests,
		"new_events":      report.NewEvents,
		"sessions_stored": report.SessionsStored,
		"duration_ms":     report.Duration.Milliseconds(),
	})
}

// Status handles GET /repos/status request. Optional owner and name
// query parameters narrow the listing.
func (h *Handler) Status(c *gin.Context) {
	repos, err := h.service.Status(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list repositories", "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	owner := c.Query("owner")
	name := c.Query("name")
	if owner != "" || name != "" {
		filtered := make([]repoModel.RepoStatus, 0, len(repos))
		for _, st := range repos {
			if owner != "" && st.Owner != owner {
				continue
			}
			if name != "" && st.Name != name {
				continue
			}
			filtered = append(filtered, st)
		}
		repos = filtered
	}

	c.JSON(http.StatusOK, gin.H{"repos": repos})
}
