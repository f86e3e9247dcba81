// Package repository provides data access layer for the stats read side.
package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	sessionModel "github.com/dapplion/review-royale/internal/session/model"
	statsModel "github.com/dapplion/review-royale/internal/stats/model"
)

// Repository defines the interface for stats queries.
type Repository interface {
	// Leaderboard ranks reviewers by XP earned in the window. A zero
	// since means all time. Bot accounts are excluded.
	Leaderboard(ctx context.Context, since time.Time, limit int) ([]statsModel.LeaderboardEntry, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new stats repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Leaderboard ranks reviewers by XP earned in the window. Ranking over
// sessions rather than the users table keeps period filters exact.
func (r *repository) Leaderboard(ctx context.Context, since time.Time, limit int) ([]statsModel.LeaderboardEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&sessionModel.ReviewSession{}).
		Select("reviewer, SUM(xp_earned) AS xp, COUNT(*) AS session_count").
		Where("reviewer NOT LIKE ?", "%[bot]%").
		Group("reviewer").
		Order("xp DESC, reviewer ASC").
		Limit(limit)
	if !since.IsZero() {
		query = query.Where("window_start >= ?", since)
	}

	var entries []statsModel.LeaderboardEntry
	if err := query.Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
