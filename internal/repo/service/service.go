// Package service provides business logic for repository tracking and sync.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dapplion/review-royale/internal/config"
	eventModel "github.com/dapplion/review-royale/internal/event/model"
	eventRepo "github.com/dapplion/review-royale/internal/event/repository"
	"github.com/dapplion/review-royale/internal/eventsource"
	repoModel "github.com/dapplion/review-royale/internal/repo/model"
	repoRepo "github.com/dapplion/review-royale/internal/repo/repository"
	"github.com/dapplion/review-royale/pkg/metrics"
	"github.com/dapplion/review-royale/pkg/retry"
)

// Rebuilder re-derives sessions and aggregates for the pull requests a
// sync pass touched.
type Rebuilder interface {
	ApplyPullRequests(ctx context.Context, repoID string, prIDs []string) (int, error)
}

// Service tracks repositories and pulls their review activity into the
// event log.
type Service interface {
	// Track registers a repository for syncing.
	Track(ctx context.Context, owner, name string) (*repoModel.Repository, error)

	// Sync runs one fetch-ingest-rebuild pass over a repository. With
	// force the cursor is ignored and the full lookback window refetched.
	Sync(ctx context.Context, owner, name string, force bool) (*repoModel.SyncReport, error)

	// SyncAll syncs every tracked repository, bounded by the configured
	// concurrency. Per-repo failures are logged, not propagated.
	SyncAll(ctx context.Context)

	// Status returns every tracked repository with its sync state.
	Status(ctx context.Context) ([]repoModel.RepoStatus, error)
}

type service struct {
	repos     repoRepo.Repository
	events    eventRepo.Repository
	source    eventsource.Adapter
	rebuilder Rebuilder
	cfg       config.SyncConfig
	logger    *zap.SugaredLogger
	locks     *LockRegistry
	now       func() time.Time
}

// New creates a new sync service instance.
func New(
	repos repoRepo.Repository,
	events eventRepo.Repository,
	source eventsource.Adapter,
	rebuilder Rebuilder,
	locks *LockRegistry,
	cfg config.SyncConfig,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repos:     repos,
		events:    events,
		source:    source,
		rebuilder: rebuilder,
		locks:     locks,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Track registers a repository for syncing. The first sync reaches back
// the configured lookback window from now.
func (s *service) Track(ctx context.Context, owner, name string) (*repoModel.Repository, error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if owner == "" || name == "" || strings.Contains(owner, "/") || strings.Contains(name, "/") {
		return nil, repoModel.ErrInvalidRepoName
	}

	if _, err := s.repos.GetByOwnerName(ctx, owner, name); err == nil {
		return nil, repoModel.ErrRepoExists
	} else if !errors.Is(err, repoModel.ErrRepoNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	repo := &repoModel.Repository{
		ID:           uuid.NewString(),
		Owner:        owner,
		Name:         name,
		TrackedSince: now.AddDate(0, 0, -s.cfg.LookbackDays),
		CreatedAt:    now,
	}
	if err := s.repos.Create(ctx, repo); err != nil {
		return nil, err
	}

	s.logger.Infow("repository tracked", "repo", repo.FullName(), "since", repo.TrackedSince)
	return repo, nil
}

// Status returns every tracked repository with its sync state.
func (s *service) Status(ctx context.Context) ([]repoModel.RepoStatus, error) {
	repos, err := s.repos.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]repoModel.RepoStatus, 0, len(repos))
	for i := range repos {
		out = append(out, repoModel.RepoStatus{
			Repository:     repos[i],
			SyncInProgress: s.locks.Held(repos[i].ID),
		})
	}
	return out, nil
}

// Sync runs one fetch-ingest-rebuild pass over a repository.
func (s *service) Sync(ctx context.Context, owner, name string, force bool) (*repoModel.SyncReport, error) {
	repo, err := s.repos.GetByOwnerName(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	if !s.locks.AcquireRepo(repo.ID) {
		metrics.SyncRuns.WithLabelValues("skipped").Inc()
		return nil, repoModel.ErrSyncInProgress
	}
	defer s.locks.ReleaseRepo(repo.ID)

	start := s.now()
	report, err := s.syncLocked(ctx, repo, force)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	report.Duration = s.now().Sub(start)
	metrics.SyncRuns.WithLabelValues("success").Inc()
	metrics.SyncDuration.Observe(report.Duration.Seconds())
	s.logger.Infow("sync pass complete",
		"repo", report.Repo,
		"pull_requests", report.PullRequests,
		"new_events", report.NewEvents,
		"sessions", report.SessionsStored,
		"duration", report.Duration)
	return report, nil
}

// SyncAll syncs every tracked repository.
func (s *service) SyncAll(ctx context.Context) {
	repos, err := s.repos.List(ctx)
	if err != nil {
		s.logger.Errorw("failed to list repositories for sync", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i := range repos {
		repo := repos[i]
		g.Go(func() error {
			_, err := s.Sync(gctx, repo.Owner, repo.Name, false)
			if err != nil {
				s.logger.Warnw("repository sync failed", "repo", repo.FullName(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// syncLocked does the actual pass; the caller holds the repo lock.
// The cursor is advanced only after every pull request ingested cleanly,
// so a partial failure re-fetches the same window next time. Ingestion
// itself is idempotent on event source ids.
func (s *service) syncLocked(ctx context.Context, repo *repoModel.Repository, force bool) (*repoModel.SyncReport, error) {
	since := repo.TrackedSince
	if !force && repo.SyncCursor != nil {
		if t, err := time.Parse(time.RFC3339Nano, *repo.SyncCursor); err == nil {
			since = t
		} else {
			s.logger.Warnw("unreadable sync cursor, falling back to tracked since",
				"repo", repo.FullName(), "cursor", *repo.SyncCursor)
		}
	}

	retryCfg := s.retryConfig()
	pulls, err := retry.DoWithResult(ctx, retryCfg, func() ([]eventsource.PullRequest, error) {
		return s.source.ListPullRequests(ctx, repo.Owner, repo.Name, since)
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}

	report := &repoModel.SyncReport{Repo: repo.FullName()}
	cursor := since
	prIDs := make([]string, 0, len(pulls))

	for i := range pulls {
		pr := &pulls[i]

		newEvents, err := s.ingestPullRequest(ctx, repo, pr, retryCfg)
		if err != nil {
			return nil, fmt.Errorf("ingest pull request %d: %w", pr.Number, err)
		}

		report.PullRequests++
		report.NewEvents += newEvents
		prIDs = append(prIDs, strconv.Itoa(pr.Number))
		if pr.UpdatedAt.After(cursor) {
			cursor = pr.UpdatedAt
		}
	}

	written, err := s.rebuilder.ApplyPullRequests(ctx, repo.ID, prIDs)
	if err != nil {
		return nil, fmt.Errorf("rebuild sessions: %w", err)
	}
	report.SessionsStored = written

	err = s.repos.UpdateSyncState(ctx, repo.ID, cursor.UTC().Format(time.RFC3339Nano), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("advance cursor: %w", err)
	}
	return report, nil
}

// ingestPullRequest fetches one pull request's activity and appends it
// to the event log.
func (s *service) ingestPullRequest(
	ctx context.Context,
	repo *repoModel.Repository,
	pr *eventsource.PullRequest,
	retryCfg retry.Config,
) (int64, error) {
	commits, err := retry.DoWithResult(ctx, retryCfg, func() ([]eventsource.Commit, error) {
		return s.source.ListCommits(ctx, repo.Owner, repo.Name, pr.Number)
	})
	if err != nil {
		return 0, err
	}

	reviews, err := retry.DoWithResult(ctx, retryCfg, func() ([]eventsource.Review, error) {
		return s.source.ListReviews(ctx, repo.Owner, repo.Name, pr.Number)
	})
	if err != nil {
		return 0, err
	}

	comments, err := retry.DoWithResult(ctx, retryCfg, func() ([]eventsource.ReviewComment, error) {
		return s.source.ListReviewComments(ctx, repo.Owner, repo.Name, pr.Number)
	})
	if err != nil {
		return 0, err
	}

	events := buildEvents(repo, pr, commits, reviews, comments)
	inserted, err := s.events.InsertBatch(ctx, events)
	if err != nil {
		return 0, err
	}
	metrics.EventsIngested.Add(float64(inserted))
	return inserted, nil
}

func (s *service) retryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = s.cfg.MaxAttempts
	cfg.MaxDelay = 5 * time.Minute
	cfg.DelayHint = func(err error) time.Duration {
		if rle, ok := eventsource.AsRateLimit(err); ok {
			return rle.RetryAfter
		}
		return 0
	}
	return cfg
}

// buildEvents flattens one pull request's activity into raw events.
// Event ids derive from source ids, so re-ingestion produces identical
// rows and the unique index drops the duplicates.
func buildEvents(
	repo *repoModel.Repository,
	pr *eventsource.PullRequest,
	commits []eventsource.Commit,
	reviews []eventsource.Review,
	comments []eventsource.ReviewComment,
) []eventModel.RawEvent {
	prID := strconv.Itoa(pr.Number)
	prefix := fmt.Sprintf("%s#%d", repo.FullName(), pr.Number)
	events := make([]eventModel.RawEvent, 0, len(commits)+len(reviews)+len(comments))

	for _, commit := range commits {
		sourceID := prefix + "/commit/" + commit.SHA
		events = append(events, eventModel.RawEvent{
			ID:            eventID(sourceID),
			SourceID:      sourceID,
			RepoID:        repo.ID,
			PullRequestID: prID,
			PRAuthor:      pr.Author,
			Actor:         commit.Author,
			Kind:          eventModel.KindCommitPushed,
			OccurredAt:    commit.CommittedAt.UTC(),
			CommitSHA:     commit.SHA,
		})
	}

	for _, review := range reviews {
		sourceID := prefix + "/review/" + strconv.FormatInt(review.ID, 10)
		body := strings.TrimSpace(review.Body)
		events = append(events, eventModel.RawEvent{
			ID:            eventID(sourceID),
			SourceID:      sourceID,
			RepoID:        repo.ID,
			PullRequestID: prID,
			PRAuthor:      pr.Author,
			Actor:         review.Actor,
			Kind:          eventModel.KindReviewStateChanged,
			OccurredAt:    review.SubmittedAt.UTC(),
			Seq:           review.ID,
			Body:          body,
			BodyLength:    utf8.RuneCountInString(body),
			ReviewState:   eventModel.ReviewState(strings.ToLower(review.State)),
		})
	}

	for _, comment := range comments {
		sourceID := prefix + "/comment/" + strconv.FormatInt(comment.ID, 10)
		body := strings.TrimSpace(comment.Body)
		events = append(events, eventModel.RawEvent{
			ID:            eventID(sourceID),
			SourceID:      sourceID,
			RepoID:        repo.ID,
			PullRequestID: prID,
			PRAuthor:      pr.Author,
			Actor:         comment.Actor,
			Kind:          eventModel.KindCommentPosted,
			OccurredAt:    comment.CreatedAt.UTC(),
			Seq:           comment.ID,
			Body:          body,
			BodyLength:    utf8.RuneCountInString(body),
		})
	}

	return events
}

func eventID(sourceID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sourceID)).String()
}
