// Package scheduler runs periodic background syncs of tracked repositories.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dapplion/review-royale/internal/repo/service"
)

// Scheduler triggers SyncAll on a fixed interval.
type Scheduler struct {
	service  service.Service
	interval time.Duration
	logger   *zap.SugaredLogger
}

// New creates a new sync scheduler instance.
func New(svc service.Service, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{service: svc, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, syncing all tracked repositories
// every interval. The first pass waits one full interval so that a
// restart loop does not hammer the source API.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Infow("sync scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("sync scheduler stopped")
			return
		case <-ticker.C:
			s.service.SyncAll(ctx)
		}
	}
}
