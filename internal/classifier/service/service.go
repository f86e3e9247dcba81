// Package service provides business logic for comment classification.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	classifierModel "github.com/dapplion/review-royale/internal/classifier/model"
	classifierRepo "github.com/dapplion/review-royale/internal/classifier/repository"
)

// Backend produces verdicts for one indexed batch of comment bodies.
type Backend interface {
	ClassifyBatch(ctx context.Context, bodies []string) ([]classifierModel.Classification, error)
}

// Service pulls unclassified comments, runs them through the backend
// and persists the verdicts.
type Service interface {
	// ClassifyPending processes up to batchSize unclassified comments.
	ClassifyPending(ctx context.Context, batchSize int) (classifierModel.Stats, error)
}

type service struct {
	repo    classifierRepo.Repository
	backend Backend
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// New creates a new classification service instance.
func New(repo classifierRepo.Repository, backend Backend, logger *zap.SugaredLogger) Service {
	return &service{
		repo:    repo,
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// ClassifyPending processes up to batchSize unclassified comments.
// Verdicts with unknown categories or out-of-range indices are counted
// as errors; comments the backend skipped stay unclassified and will be
// retried on the next run.
func (s *service) ClassifyPending(ctx context.Context, batchSize int) (classifierModel.Stats, error) {
	var stats classifierModel.Stats

	events, err := s.repo.ListUnclassified(ctx, batchSize)
	if err != nil {
		return stats, err
	}
	if len(events) == 0 {
		s.logger.Debugw("no unclassified comments")
		return stats, nil
	}

	bodies := make([]string, len(events))
	for i, ev := range events {
		bodies[i] = ev.Body
	}

	verdicts, err := s.backend.ClassifyBatch(ctx, bodies)
	if err != nil {
		return stats, err
	}

	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= len(events) {
			s.logger.Warnw("verdict index out of range", "index", v.Index, "batch", len(events))
			stats.Errors++
			continue
		}
		if !classifierModel.KnownCategory(v.Category) {
			s.logger.Warnw("verdict with unknown category", "category", v.Category)
			stats.Errors++
			continue
		}

		ev := events[v.Index]
		score := v.QualityScore
		if score < 1 {
			score = 1
		} else if score > 10 {
			score = 10
		}

		err := s.repo.SetClassification(ctx, &classifierModel.CommentQuality{
			CommentSourceID: ev.SourceID,
			RepoID:          ev.RepoID,
			PullRequestID:   ev.PullRequestID,
			Category:        v.Category,
			QualityScore:    score,
			ClassifiedAt:    s.now().UTC(),
		})
		if err != nil {
			s.logger.Warnw("failed to store classification", "source_id", ev.SourceID, "error", err)
			stats.Errors++
			continue
		}
		stats.Processed++
	}

	stats.Skipped = len(events) - stats.Processed - stats.Errors
	if stats.Skipped < 0 {
		stats.Skipped = 0
	}

	s.logger.Infow("classification run complete",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats, nil
}
