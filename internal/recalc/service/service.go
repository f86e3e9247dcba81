// Package service rebuilds derived state from the raw event log.
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	achievementService "github.com/dapplion/review-royale/internal/achievement/service"
	classifierRepo "github.com/dapplion/review-royale/internal/classifier/repository"
	eventRepo "github.com/dapplion/review-royale/internal/event/repository"
	sessionModel "github.com/dapplion/review-royale/internal/session/model"
	sessionRepo "github.com/dapplion/review-royale/internal/session/repository"
	"github.com/dapplion/review-royale/internal/session/scoring"
	"github.com/dapplion/review-royale/internal/session/segmenter"
	userModel "github.com/dapplion/review-royale/internal/user/model"
	userRepo "github.com/dapplion/review-royale/internal/user/repository"
	"github.com/dapplion/review-royale/pkg/metrics"
)

// ErrRecalcBusy indicates a sync pass or another recalculation is
// holding the derived state.
var ErrRecalcBusy = errors.New("recalculation blocked by active sync")

// Gate serializes a full recalculation against sync passes.
type Gate interface {
	AcquireExclusive() bool
	ReleaseExclusive()
}

// Report summarizes one full recalculation run.
type Report struct {
	Repos        int           `json:"repos"`
	PullRequests int           `json:"pull_requests"`
	Events       int64         `json:"events"`
	Sessions     int           `json:"sessions"`
	XPAwarded    int64         `json:"xp_awarded"`
	Users        int           `json:"users"`
	Duration     time.Duration `json:"duration"`
}

// Service derives sessions, scores, aggregates and achievements from
// the event log. Derived state is never edited in place; it is replaced
// from scratch at pull request or global granularity.
type Service interface {
	// ApplyPullRequests re-derives the sessions of the listed pull
	// requests and refreshes the touched reviewers' aggregates. Used by
	// sync after new events land. Returns the number of sessions written.
	ApplyPullRequests(ctx context.Context, repoID string, prIDs []string) (int, error)

	// RecalculateAll wipes all derived state and replays the full event
	// log. Same events in, same state out, regardless of arrival order.
	RecalculateAll(ctx context.Context) (*Report, error)
}

type service struct {
	db           *gorm.DB
	events       eventRepo.Repository
	sessions     sessionRepo.Repository
	quality      classifierRepo.Repository
	users        userRepo.Repository
	achievements achievementService.Service
	gate         Gate
	logger       *zap.SugaredLogger
	concurrency  int
	now          func() time.Time
}

// New creates a new recalculation service instance.
func New(
	db *gorm.DB,
	events eventRepo.Repository,
	sessions sessionRepo.Repository,
	quality classifierRepo.Repository,
	users userRepo.Repository,
	achievements achievementService.Service,
	gate Gate,
	concurrency int,
	logger *zap.SugaredLogger,
) Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &service{
		db:           db,
		events:       events,
		sessions:     sessions,
		quality:      quality,
		users:        users,
		achievements: achievements,
		gate:         gate,
		logger:       logger,
		concurrency:  concurrency,
		now:          time.Now,
	}
}

// ApplyPullRequests re-derives sessions for the listed pull requests
// and refreshes the touched reviewers.
func (s *service) ApplyPullRequests(ctx context.Context, repoID string, prIDs []string) (int, error) {
	written := 0
	reviewers := make(map[string]struct{})

	for _, prID := range prIDs {
		sessions, err := s.derivePullRequest(ctx, repoID, prID)
		if err != nil {
			return written, err
		}
		if err := s.sessions.ReplaceForPullRequest(ctx, repoID, prID, sessions); err != nil {
			return written, err
		}

		written += len(sessions)
		for i := range sessions {
			reviewers[sessions[i].Reviewer] = struct{}{}
			metrics.SessionsScored.Inc()
			metrics.XPAwarded.Add(float64(sessions[i].XPEarned))
		}
	}

	if err := s.refreshReviewers(ctx, sortedKeys(reviewers)); err != nil {
		return written, err
	}
	return written, nil
}

// RecalculateAll replays the full event log. Derivation writes nothing,
// so a failure there leaves the stored state untouched; the wipe and
// the rewrite then happen in a single transaction that rolls back as a
// whole.
func (s *service) RecalculateAll(ctx context.Context) (*Report, error) {
	if s.gate != nil {
		if !s.gate.AcquireExclusive() {
			return nil, ErrRecalcBusy
		}
		defer s.gate.ReleaseExclusive()
	}

	start := s.now()
	s.logger.Infow("full recalculation started")

	// Affected reviewers must be collected before sessions are replaced:
	// a reviewer whose sessions all disappear still needs a refold.
	priorReviewers, err := s.sessions.ListReviewers(ctx)
	if err != nil {
		metrics.RecalcRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	repoIDs, err := s.events.ListRepoIDs(ctx)
	if err != nil {
		metrics.RecalcRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	var (
		mu      sync.Mutex
		all     []sessionModel.ReviewSession
		prCount int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, repoID := range repoIDs {
		prIDs, err := s.events.ListPullRequestIDs(ctx, repoID)
		if err != nil {
			metrics.RecalcRuns.WithLabelValues("error").Inc()
			return nil, err
		}

		for _, prID := range prIDs {
			repoID, prID := repoID, prID
			g.Go(func() error {
				sessions, err := s.derivePullRequest(gctx, repoID, prID)
				if err != nil {
					return err
				}

				mu.Lock()
				prCount++
				all = append(all, sessions...)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		metrics.RecalcRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	var xpAwarded int64
	byReviewer := make(map[string][]sessionModel.ReviewSession)
	for i := range all {
		xpAwarded += int64(all[i].XPEarned)
		byReviewer[all[i].Reviewer] = append(byReviewer[all[i].Reviewer], all[i])
	}
	for _, reviewer := range priorReviewers {
		if _, ok := byReviewer[reviewer]; !ok {
			byReviewer[reviewer] = nil
		}
	}

	now := s.now().UTC()
	affected := make([]string, 0, len(byReviewer))
	for reviewer := range byReviewer {
		affected = append(affected, reviewer)
	}
	sort.Strings(affected)

	users := make([]userModel.User, 0, len(affected))
	for _, reviewer := range affected {
		sessions := byReviewer[reviewer]
		sort.Slice(sessions, func(i, j int) bool {
			if !sessions[i].WindowStart.Equal(sessions[j].WindowStart) {
				return sessions[i].WindowStart.Before(sessions[j].WindowStart)
			}
			return sessions[i].PullRequestID < sessions[j].PullRequestID
		})
		users = append(users, userModel.Fold(reviewer, sessions, now))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txSessions := s.sessions.WithTx(tx)
		if err := txSessions.DeleteAll(ctx); err != nil {
			return err
		}
		if err := txSessions.InsertBatch(ctx, all); err != nil {
			return err
		}

		txUsers := s.users.WithTx(tx)
		if err := txUsers.ResetAll(ctx); err != nil {
			return err
		}
		for i := range users {
			if err := txUsers.Upsert(ctx, &users[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecalcRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	for i := range all {
		metrics.SessionsScored.Inc()
		metrics.XPAwarded.Add(float64(all[i].XPEarned))
	}

	// Unlocks are monotonic and never revoked, so evaluating them after
	// the commit cannot conflict with the swapped state.
	for i := range users {
		if _, err := s.achievements.Evaluate(ctx, &users[i]); err != nil {
			s.logger.Warnw("achievement evaluation incomplete",
				"reviewer", users[i].UserID, "error", err)
		}
	}

	eventCount, err := s.events.Count(ctx)
	if err != nil {
		metrics.RecalcRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	report := &Report{
		Repos:        len(repoIDs),
		PullRequests: prCount,
		Events:       eventCount,
		Sessions:     len(all),
		XPAwarded:    xpAwarded,
		Users:        len(affected),
		Duration:     s.now().Sub(start),
	}
	metrics.RecalcRuns.WithLabelValues("success").Inc()
	s.logger.Infow("full recalculation complete",
		"repos", report.Repos,
		"pull_requests", report.PullRequests,
		"events", report.Events,
		"sessions", report.Sessions,
		"xp_awarded", report.XPAwarded,
		"users", report.Users,
		"duration", report.Duration)
	return report, nil
}

// derivePullRequest segments and scores one pull request's event log.
// It only reads; persisting the result is the caller's business.
func (s *service) derivePullRequest(ctx context.Context, repoID, prID string) ([]sessionModel.ReviewSession, error) {
	events, err := s.events.ListByPullRequest(ctx, repoID, prID)
	if err != nil {
		return nil, err
	}

	sessions := segmenter.Segment(events)

	quality, err := s.quality.GetForPullRequest(ctx, repoID, prID)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].XPEarned = scoring.Score(&sessions[i], quality)
	}
	return sessions, nil
}

// refreshReviewers refolds each reviewer's aggregate from their stored
// sessions and re-evaluates achievements.
func (s *service) refreshReviewers(ctx context.Context, reviewers []string) error {
	now := s.now().UTC()

	for _, reviewer := range reviewers {
		sessions, err := s.sessions.ListByReviewerAsc(ctx, reviewer)
		if err != nil {
			return err
		}

		user := userModel.Fold(reviewer, sessions, now)
		if err := s.users.Upsert(ctx, &user); err != nil {
			return err
		}

		if _, err := s.achievements.Evaluate(ctx, &user); err != nil {
			s.logger.Warnw("achievement evaluation incomplete",
				"reviewer", reviewer, "error", err)
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
