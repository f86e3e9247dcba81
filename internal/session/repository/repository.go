// Package repository provides data access layer for review sessions.
package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	sessionModel "github.com/dapplion/review-royale/internal/session/model"
)

// Repository defines the interface for review session persistence.
type Repository interface {
	// ReplaceForPullRequest deletes the stored sessions of one pull
	// request and inserts the freshly derived set in a single call.
	ReplaceForPullRequest(
		ctx context.Context,
		repoID, prID string,
		sessions []sessionModel.ReviewSession,
	) error

	// ListByReviewer returns a reviewer's sessions, newest window first,
	// optionally bounded by repo and a lower time bound.
	ListByReviewer(
		ctx context.Context,
		reviewer string,
		repoID string,
		since time.Time,
	) ([]sessionModel.ReviewSession, error)

	// ListByReviewerAsc returns all of a reviewer's sessions ordered by
	// window start ascending, for aggregate folding.
	ListByReviewerAsc(ctx context.Context, reviewer string) ([]sessionModel.ReviewSession, error)

	// ListReviewers returns the distinct reviewers with stored sessions.
	ListReviewers(ctx context.Context) ([]string, error)

	// InsertBatch persists freshly derived sessions.
	InsertBatch(ctx context.Context, sessions []sessionModel.ReviewSession) error

	// DeleteAll removes every derived session (used by full recalculation).
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int64, error)

	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new session repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// ReplaceForPullRequest swaps one pull request's derived sessions.
func (r *repository) ReplaceForPullRequest(
	ctx context.Context,
	repoID, prID string,
	sessions []sessionModel.ReviewSession,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("repo_id = ? AND pull_request_id = ?", repoID, prID).
			Delete(&sessionModel.ReviewSession{}).Error
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		return tx.Create(&sessions).Error
	})
}

// ListByReviewer returns a reviewer's sessions, newest window first.
func (r *repository) ListByReviewer(
	ctx context.Context,
	reviewer string,
	repoID string,
	since time.Time,
) ([]sessionModel.ReviewSession, error) {
	query := r.db.WithContext(ctx).
		Where("reviewer = ?", reviewer)
	if repoID != "" {
		query = query.Where("repo_id = ?", repoID)
	}
	if !since.IsZero() {
		query = query.Where("window_start >= ?", since)
	}

	var sessions []sessionModel.ReviewSession
	err := query.Order("window_start DESC").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListByReviewerAsc returns a reviewer's sessions oldest first.
func (r *repository) ListByReviewerAsc(
	ctx context.Context,
	reviewer string,
) ([]sessionModel.ReviewSession, error) {
	var sessions []sessionModel.ReviewSession
	err := r.db.WithContext(ctx).
		Where("reviewer = ?", reviewer).
		Order("window_start ASC, pull_request_id ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListReviewers returns the distinct reviewers with stored sessions.
func (r *repository) ListReviewers(ctx context.Context) ([]string, error) {
	var reviewers []string
	err := r.db.WithContext(ctx).
		Model(&sessionModel.ReviewSession{}).
		Distinct("reviewer").
		Order("reviewer ASC").
		Pluck("reviewer", &reviewers).Error
	if err != nil {
		return nil, err
	}
	return reviewers, nil
}

// InsertBatch persists freshly derived sessions.
func (r *repository) InsertBatch(ctx context.Context, sessions []sessionModel.ReviewSession) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sessions).Error
}

// DeleteAll removes every derived session.
func (r *repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&sessionModel.ReviewSession{}).Error
}

// Count returns the number of stored sessions.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&sessionModel.ReviewSession{}).Count(&count).Error
	return count, err
}

// WithTx returns a repository bound to the given transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx, logger: r.logger}
}
