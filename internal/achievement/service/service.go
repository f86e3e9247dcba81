// Package service provides business logic for achievement evaluation.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	achievementModel "github.com/dapplion/review-royale/internal/achievement/model"
	achievementRepo "github.com/dapplion/review-royale/internal/achievement/repository"
	userModel "github.com/dapplion/review-royale/internal/user/model"
	"github.com/dapplion/review-royale/pkg/metrics"
)

// Service evaluates the achievement catalog against user aggregates and
// manages unlock notifications.
type Service interface {
	// Evaluate checks every catalog predicate for the user and records
	// new unlocks. Returns the definitions unlocked by this call.
	// Idempotent: re-running over the same aggregate unlocks nothing.
	Evaluate(ctx context.Context, user *userModel.User) ([]achievementModel.Definition, error)

	// ListByUser returns a user's unlocks joined with catalog data.
	ListByUser(ctx context.Context, userID string) ([]achievementModel.PendingUnlock, error)

	// ListPending returns unannounced unlocks joined with catalog data.
	ListPending(ctx context.Context, limit int) ([]achievementModel.PendingUnlock, error)

	// MarkNotified flags one unlock as announced.
	MarkNotified(ctx context.Context, userID, achievementID string) error
}

type service struct {
	repo    achievementRepo.Repository
	catalog []achievementModel.Definition
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// New creates a new achievement service instance.
func New(repo achievementRepo.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:    repo,
		catalog: achievementModel.Catalog(),
		logger:  logger,
		now:     time.Now,
	}
}

// Evaluate checks every catalog predicate for the user and records new
// unlocks. A failing insert skips that definition and continues, so one
// bad row cannot block the rest of the catalog.
func (s *service) Evaluate(ctx context.Context, user *userModel.User) ([]achievementModel.Definition, error) {
	var unlocked []achievementModel.Definition
	var lastErr error

	for _, def := range s.catalog {
		if !def.Predicate(user) {
			continue
		}

		isNew, err := s.repo.Unlock(ctx, &achievementModel.UnlockRecord{
			UserID:        user.UserID,
			AchievementID: def.ID,
			UnlockedAt:    s.now().UTC(),
		})
		if err != nil {
			s.logger.Errorw("failed to record achievement unlock",
				"user_id", user.UserID,
				"achievement_id", def.ID,
				"error", err)
			lastErr = err
			continue
		}
		if isNew {
			s.logger.Infow("achievement unlocked",
				"user_id", user.UserID,
				"achievement_id", def.ID,
				"rarity", def.Rarity)
			metrics.AchievementsUnlocked.Inc()
			unlocked = append(unlocked, def)
		}
	}

	return unlocked, lastErr
}

// ListByUser returns a user's unlocks joined with catalog data.
func (s *service) ListByUser(ctx context.Context, userID string) ([]achievementModel.PendingUnlock, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.join(records), nil
}

// ListPending returns unannounced unlocks joined with catalog data.
func (s *service) ListPending(ctx context.Context, limit int) ([]achievementModel.PendingUnlock, error) {
	records, err := s.repo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.join(records), nil
}

// MarkNotified flags one unlock as announced.
func (s *service) MarkNotified(ctx context.Context, userID, achievementID string) error {
	return s.repo.MarkNotified(ctx, userID, achievementID)
}

// join attaches catalog metadata to unlock rows. Unlocks whose catalog
// entry was removed are dropped rather than surfaced half-filled.
func (s *service) join(records []achievementModel.UnlockRecord) []achievementModel.PendingUnlock {
	out := make([]achievementModel.PendingUnlock, 0, len(records))
	for _, rec := range records {
		def, ok := achievementModel.DefinitionByID(rec.AchievementID)
		if !ok {
			s.logger.Warnw("unlock references unknown achievement",
				"achievement_id", rec.AchievementID,
				"user_id", rec.UserID)
			continue
		}
		out = append(out, achievementModel.PendingUnlock{
			UserID:        rec.UserID,
			AchievementID: rec.AchievementID,
			Name:          def.Name,
			Description:   def.Description,
			Emoji:         def.Emoji,
			Rarity:        def.Rarity,
			UnlockedAt:    rec.UnlockedAt,
		})
	}
	return out
}
