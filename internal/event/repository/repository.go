// Package repository provides data access layer for the raw event log.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	eventModel "github.com/dapplion/review-royale/internal/event/model"
)

// Repository defines the interface for raw event persistence.
type Repository interface {
	// InsertBatch persists events, silently skipping rows whose source_id
	// is already stored. Returns the number of newly inserted events.
	InsertBatch(ctx context.Context, events []eventModel.RawEvent) (int64, error)

	// ListByPullRequest returns the full ordered event log for one pull request.
	ListByPullRequest(ctx context.Context, repoID, prID string) ([]eventModel.RawEvent, error)

	// ListPullRequestIDs returns the distinct pull request ids seen for a repo.
	ListPullRequestIDs(ctx context.Context, repoID string) ([]string, error)

	// ListRepoIDs returns the distinct repo ids present in the event log.
	ListRepoIDs(ctx context.Context) ([]string, error)

	// Count returns the total number of stored events.
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new event repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// InsertBatch persists events idempotently on source_id.
func (r *repository) InsertBatch(ctx context.Context, events []eventModel.RawEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_id"}},
			DoNothing: true,
		}).
		Create(&events)

	if result.Error != nil {
		return 0, result.Error
	}

	r.logger.Debugw("raw events inserted", "offered", len(events), "new", result.RowsAffected)
	return result.RowsAffected, nil
}

// ListByPullRequest returns the ordered event log for one pull request.
func (r *repository) ListByPullRequest(
	ctx context.Context,
	repoID, prID string,
) ([]eventModel.RawEvent, error) {
	var events []eventModel.RawEvent
	err := r.db.WithContext(ctx).
		Where("repo_id = ? AND pull_request_id = ?", repoID, prID).
		Order("occurred_at ASC, seq ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListPullRequestIDs returns the distinct pull request ids for a repo.
func (r *repository) ListPullRequestIDs(ctx context.Context, repoID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&eventModel.RawEvent{}).
		Where("repo_id = ?", repoID).
		Distinct("pull_request_id").
		Order("pull_request_id ASC").
		Pluck("pull_request_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListRepoIDs returns the distinct repo ids present in the event log.
func (r *repository) ListRepoIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&eventModel.RawEvent{}).
		Distinct("repo_id").
		Order("repo_id ASC").
		Pluck("repo_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Count returns the total number of stored events.
func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&eventModel.RawEvent{}).Count(&count).Error
	return count, err
}
