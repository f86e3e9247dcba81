// Package repository provides data access layer for tracked repositories.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	repoModel "github.com/dapplion/review-royale/internal/repo/model"
)

// Repository defines the interface for tracked repository persistence.
type Repository interface {
	// Create persists a newly tracked repository.
	Create(ctx context.Context, repo *repoModel.Repository) error

	// GetByOwnerName returns one tracked repository.
	GetByOwnerName(ctx context.Context, owner, name string) (*repoModel.Repository, error)

	// GetByID returns one tracked repository by id.
	GetByID(ctx context.Context, id string) (*repoModel.Repository, error)

	// List returns every tracked repository.
	List(ctx context.Context) ([]repoModel.Repository, error)

	// UpdateSyncState advances the cursor and sync timestamp.
	UpdateSyncState(ctx context.Context, id string, cursor string, syncedAt time.Time) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new tracked repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

// Create persists a newly tracked repository.
func (r *repository) Create(ctx context.Context, repo *repoModel.Repository) error {
	err := r.db.WithContext(ctx).Create(repo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repoModel.ErrRepoExists
		}
		return err
	}
	return nil
}

// GetByOwnerName returns one tracked repository.
func (r *repository) GetByOwnerName(ctx context.Context, owner, name string) (*repoModel.Repository, error) {
	var repo repoModel.Repository
	err := r.db.WithContext(ctx).
		Where("owner = ? AND name = ?", owner, name).
		First(&repo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repoModel.ErrRepoNotFound
		}
		return nil, err
	}
	return &repo, nil
}

// GetByID returns one tracked repository by id.
func (r *repository) GetByID(ctx context.Context, id string) (*repoModel.Repository, error) {
	var repo repoModel.Repository
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&repo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repoModel.ErrRepoNotFound
		}
		return nil, err
	}
	return &repo, nil
}

// List returns every tracked repository.
func (r *repository) List(ctx context.Context) ([]repoModel.Repository, error) {
	var repos []repoModel.Repository
	err := r.db.WithContext(ctx).
		Order("owner ASC, name ASC").
		Find(&repos).Error
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// UpdateSyncState advances the cursor and sync timestamp.
func (r *repository) UpdateSyncState(ctx context.Context, id string, cursor string, syncedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&repoModel.Repository{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sync_cursor":    cursor,
			"last_synced_at": syncedAt,
		}).Error
}
