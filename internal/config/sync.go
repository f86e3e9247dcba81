package config

import (
	"fmt"
	"time"
)

// SyncConfig holds review event sync configuration.
type SyncConfig struct {
	// GitHubToken authenticates against the source API. Empty means
	// unauthenticated requests (heavily rate limited).
	GitHubToken string
	// APIBaseURL overrides the source API endpoint (proxies, tests).
	APIBaseURL string
	// Interval is the pause between background sync passes.
	Interval time.Duration
	// LookbackDays bounds the first sync of a freshly tracked repository.
	LookbackDays int
	// MaxAttempts caps retries of a throttled or failing source call.
	MaxAttempts int
	// Concurrency is the number of repositories synced in parallel.
	Concurrency int
	// HTTPTimeout is the per-request timeout against the source API.
	HTTPTimeout time.Duration
	// SchedulerEnabled turns the background sync loop on or off.
	SchedulerEnabled bool
}

// LoadSyncConfigFromEnv loads sync configuration from environment variables.
func LoadSyncConfigFromEnv() SyncConfig {
	return SyncConfig{
		GitHubToken:      GetEnv("GITHUB_TOKEN", ""),
		APIBaseURL:       GetEnv("GITHUB_API_BASE_URL", ""),
		Interval:         GetEnvDuration("SYNC_INTERVAL", 6*time.Hour),
		LookbackDays:     GetEnvInt("SYNC_LOOKBACK_DAYS", 365),
		MaxAttempts:      GetEnvInt("SYNC_MAX_ATTEMPTS", 5),
		Concurrency:      GetEnvInt("SYNC_CONCURRENCY", 4),
		HTTPTimeout:      GetEnvDuration("SYNC_HTTP_TIMEOUT", 30*time.Second),
		SchedulerEnabled: GetEnvBool("SYNC_SCHEDULER_ENABLED", true),
	}
}

// Validate validates sync configuration.
func (c SyncConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("Interval must be greater than 0")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("LookbackDays must be greater than 0")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("MaxAttempts must be greater than 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("Concurrency must be greater than 0")
	}
	return nil
}
