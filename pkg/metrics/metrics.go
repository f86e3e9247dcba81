// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SyncRuns counts sync passes by outcome (success, error, skipped).
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "review_royale",
		Name:      "sync_runs_total",
		Help:      "Repository sync passes by outcome.",
	}, []string{"outcome"})

	// EventsIngested counts raw events newly persisted by sync.
	EventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "review_royale",
		Name:      "events_ingested_total",
		Help:      "Raw review events newly persisted.",
	})

	// SessionsScored counts review sessions written after segmentation.
	SessionsScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "review_royale",
		Name:      "sessions_scored_total",
		Help:      "Review sessions segmented and scored.",
	})

	// XPAwarded accumulates XP granted across all scored sessions.
	XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "review_royale",
		Name:      "xp_awarded_total",
		Help:      "Total XP granted across scored sessions.",
	})

	// AchievementsUnlocked counts newly recorded achievement unlocks.
	AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "review_royale",
		Name:      "achievements_unlocked_total",
		Help:      "Achievement unlocks newly recorded.",
	})

	// RecalcRuns counts full recalculation runs by outcome.
	RecalcRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "review_royale",
		Name:      "recalc_runs_total",
		Help:      "Full recalculation runs by outcome.",
	}, []string{"outcome"})

	// SyncDuration observes wall time of a single repository sync.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "review_royale",
		Name:      "sync_duration_seconds",
		Help:      "Wall time of a single repository sync.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// Handler returns the gin handler serving the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
