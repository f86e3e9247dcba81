// Package repository provides data access layer for comment classifications.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	classifierModel "github.com/dapplion/review-royale/internal/classifier/model"
	eventModel "github.com/dapplion/review-royale/internal/event/model"
	"github.com/dapplion/review-royale/internal/session/scoring"
)

// Repository defines the interface for comment classification persistence.
type Repository interface {
	// SetClassification upserts one comment's verdict.
	SetClassification(ctx context.Context, quality *classifierModel.CommentQuality) error

	// GetForPullRequest returns the classification map the scorer
	// consumes, keyed by comment source id.
	GetForPullRequest(ctx context.Context, repoID, pullRequestID string) (map[string]scoring.CommentQuality, error)

	// ListUnclassified returns comment events with a body that have no
	// classification yet, newest first.
	ListUnclassified(ctx context.Context, limit int) ([]eventModel.RawEvent, error)

	// Count returns how many classifications are stored.
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new classification repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// SetClassification upserts one comment's verdict.
func (r *repository) SetClassification(ctx context.Context, quality *classifierModel.CommentQuality) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "comment_source_id"}},
			UpdateAll: true,
		}).
		Create(quality).Error
}

// GetForPullRequest returns the classification map for one pull request.
func (r *repository) GetForPullRequest(ctx context.Context, repoID, pullRequestID string) (map[string]scoring.CommentQuality, error) {
	var rows []classifierModel.CommentQuality
	err := r.db.WithContext(ctx).
		Where("repo_id = ? AND pull_request_id = ?", repoID, pullRequestID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]scoring.CommentQuality, len(rows))
	for _, row := range rows {
		out[row.CommentSourceID] = scoring.CommentQuality{
			Category:     row.Category,
			QualityScore: row.QualityScore,
		}
	}
	return out, nil
}

// ListUnclassified returns comment events with a body that have no
// classification yet, newest first.
func (r *repository) ListUnclassified(ctx context.Context, limit int) ([]eventModel.RawEvent, error) {
	var events []eventModel.RawEvent
	err := r.db.WithContext(ctx).
		Table("raw_events").
		Joins("LEFT JOIN comment_quality ON comment_quality.comment_source_id = raw_events.source_id").
		Where("comment_quality.comment_source_id IS NULL").
		Where("raw_events.kind IN ?", []string{string(eventModel.KindCommentPosted), string(eventModel.KindReviewStateChanged)}).
		Where("raw_events.body_length > 0").
		Order("raw_events.occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns how many classifications are stored.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&classifierModel.CommentQuality{}).
		Count(&count).Error
	return count, err
}
