// Package repository provides data access layer for user aggregates.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userModel "github.com/dapplion/review-royale/internal/user/model"
)

// Repository defines the interface for user aggregate persistence.
type Repository interface {
	// GetByID returns one user's aggregate.
	GetByID(ctx context.Context, userID string) (*userModel.User, error)

	// Upsert writes a freshly folded aggregate, replacing any prior row.
	Upsert(ctx context.Context, user *userModel.User) error

	// ResetAll zeroes every derived aggregate (used by full recalculation).
	ResetAll(ctx context.Context) error

	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new user repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// GetByID returns one user's aggregate.
func (r *repository) GetByID(ctx context.Context, userID string) (*userModel.User, error) {
	var user userModel.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userModel.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Upsert writes a folded aggregate, replacing any prior row.
func (r *repository) Upsert(ctx context.Context, user *userModel.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(user).Error
}

// ResetAll zeroes every derived aggregate.
func (r *repository) ResetAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"xp":                   0,
			"level":                1,
			"review_session_count": 0,
			"fast_session_count":   0,
			"current_streak_days":  0,
			"longest_streak_days":  0,
			"max_sessions_in_day":  0,
			"last_session_day":     nil,
		}).Error
}

// WithTx returns a repository bound to the given transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx, logger: r.logger}
}
