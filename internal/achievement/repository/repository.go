// Package repository provides data access layer for achievement unlocks.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	achievementModel "github.com/dapplion/review-royale/internal/achievement/model"
)

// Repository defines the interface for achievement unlock persistence.
type Repository interface {
	// Unlock records an achievement for a user. Returns true when the
	// unlock is new; re-recording an existing unlock is a no-op.
	Unlock(ctx context.Context, record *achievementModel.UnlockRecord) (bool, error)

	// ListByUser returns a user's unlocks.
	ListByUser(ctx context.Context, userID string) ([]achievementModel.UnlockRecord, error)

	// ListPending returns unlocks whose notification has not been sent.
	// A non-positive limit means no limit.
	ListPending(ctx context.Context, limit int) ([]achievementModel.UnlockRecord, error)

	// MarkNotified flags one unlock as announced.
	MarkNotified(ctx context.Context, userID, achievementID string) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new achievement repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Unlock records an achievement for a user, ignoring duplicates.
func (r *repository) Unlock(ctx context.Context, record *achievementModel.UnlockRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser returns a user's unlocks, newest first.
func (r *repository) ListByUser(ctx context.Context, userID string) ([]achievementModel.UnlockRecord, error) {
	var records []achievementModel.UnlockRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListPending returns unlocks whose notification has not been sent,
// oldest first so announcements keep earning order.
func (r *repository) ListPending(ctx context.Context, limit int) ([]achievementModel.UnlockRecord, error) {
	query := r.db.WithContext(ctx).
		Where("notified = ?", false).
		Order("unlocked_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []achievementModel.UnlockRecord
	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// MarkNotified flags one unlock as announced.
func (r *repository) MarkNotified(ctx context.Context, userID, achievementID string) error {
	return r.db.WithContext(ctx).
		Model(&achievementModel.UnlockRecord{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Update("notified", true).Error
}
