// Package service provides business logic for the stats read side.
package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	achievementModel "github.com/dapplion/review-royale/internal/achievement/model"
	achievementService "github.com/dapplion/review-royale/internal/achievement/service"
	sessionModel "github.com/dapplion/review-royale/internal/session/model"
	sessionRepo "github.com/dapplion/review-royale/internal/session/repository"
	statsModel "github.com/dapplion/review-royale/internal/stats/model"
	statsRepo "github.com/dapplion/review-royale/internal/stats/repository"
	userModel "github.com/dapplion/review-royale/internal/user/model"
	userRepo "github.com/dapplion/review-royale/internal/user/repository"
)

const defaultLeaderboardLimit = 25

// Aggregate pairs a user's counters with their unlocked achievements.
type Aggregate struct {
	User         userModel.User                   `json:"user"`
	Achievements []achievementModel.PendingUnlock `json:"achievements"`
}

// Service serves sessions, aggregates and leaderboards.
type Service interface {
	// Sessions returns a user's scored sessions, newest first,
	// optionally bounded by repo and period.
	Sessions(ctx context.Context, userID, repoID string, period statsModel.Period) ([]sessionModel.ReviewSession, error)

	// Aggregate returns one user's counters and achievements. With a
	// repo or non-all period filter the counters are folded on the fly
	// from the matching sessions instead of read from storage.
	Aggregate(ctx context.Context, userID, repoID string, period statsModel.Period) (*Aggregate, error)

	// Leaderboard ranks reviewers within a period.
	Leaderboard(ctx context.Context, period statsModel.Period, limit int) ([]statsModel.LeaderboardEntry, error)
}

type service struct {
	sessions     sessionRepo.Repository
	users        userRepo.Repository
	stats        statsRepo.Repository
	achievements achievementService.Service
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// New creates a new stats service instance.
func New(
	sessions sessionRepo.Repository,
	users userRepo.Repository,
	stats statsRepo.Repository,
	achievements achievementService.Service,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		sessions:     sessions,
		users:        users,
		stats:        stats,
		achievements: achievements,
		logger:       logger,
		now:          time.Now,
	}
}

// Sessions returns a user's scored sessions, newest first.
func (s *service) Sessions(ctx context.Context, userID, repoID string, period statsModel.Period) ([]sessionModel.ReviewSession, error) {
	return s.sessions.ListByReviewer(ctx, userID, repoID, period.Since(s.now().UTC()))
}

// Aggregate returns one user's counters and achievements.
func (s *service) Aggregate(ctx context.Context, userID, repoID string, period statsModel.Period) (*Aggregate, error) {
	var user *userModel.User

	if repoID == "" && (period == "" || period == statsModel.PeriodAll) {
		stored, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		user = stored
	} else {
		folded, err := s.foldFiltered(ctx, userID, repoID, period)
		if err != nil {
			return nil, err
		}
		user = folded
	}

	unlocks, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if unlocks == nil {
		unlocks = []achievementModel.PendingUnlock{}
	}

	return &Aggregate{User: *user, Achievements: unlocks}, nil
}

// foldFiltered rebuilds counters from the sessions matching the filter.
func (s *service) foldFiltered(ctx context.Context, userID, repoID string, period statsModel.Period) (*userModel.User, error) {
	now := s.now().UTC()
	sessions, err := s.sessions.ListByReviewer(ctx, userID, repoID, period.Since(now))
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, userModel.ErrUserNotFound
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].WindowStart.Before(sessions[j].WindowStart)
	})
	user := userModel.Fold(userID, sessions, now)
	return &user, nil
}

// Leaderboard ranks reviewers within a period. Rank and level are
// filled in from the period totals.
func (s *service) Leaderboard(ctx context.Context, period statsModel.Period, limit int) ([]statsModel.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	entries, err := s.stats.Leaderboard(ctx, period.Since(s.now().UTC()), limit)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Level = userModel.Level(entries[i].XP)
	}
	return entries, nil
}
