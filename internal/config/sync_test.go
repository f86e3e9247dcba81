package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSyncConfigFromEnv_Defaults(t *testing.T) {
	restore := setupAndRestoreEnv(t, map[string]string{})
	defer restore()

	cfg := LoadSyncConfigFromEnv()
	assert.Equal(t, "", cfg.GitHubToken)
	assert.Equal(t, 6*time.Hour, cfg.Interval)
	assert.Equal(t, 365, cfg.LookbackDays)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.SchedulerEnabled)
}

func TestLoadSyncConfigFromEnv_CustomValues(t *testing.T) {
	restore := setupAndRestoreEnv(t, map[string]string{
		"GITHUB_TOKEN":           "ghp_token",
		"SYNC_INTERVAL":          "15m",
		"SYNC_LOOKBACK_DAYS":     "30",
		"SYNC_CONCURRENCY":       "2",
		"SYNC_SCHEDULER_ENABLED": "false",
	})
	defer restore()

	cfg := LoadSyncConfigFromEnv()
	assert.Equal(t, "ghp_token", cfg.GitHubToken)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestSyncConfig_Validate(t *testing.T) {
	cfg := validSyncConfig()
	assert.NoError(t, cfg.Validate())

	invalid := validSyncConfig()
	invalid.Interval = 0
	assert.Error(t, invalid.Validate())

	invalid = validSyncConfig()
	invalid.LookbackDays = -1
	assert.Error(t, invalid.Validate())

	invalid = validSyncConfig()
	invalid.Concurrency = 0
	assert.Error(t, invalid.Validate())
}

func TestClassifierConfig_Enabled(t *testing.T) {
	cfg := validClassifierConfig()
	assert.False(t, cfg.Enabled())

	cfg.OpenAIAPIKey = "sk-test"
	assert.True(t, cfg.Enabled())
}

func TestClassifierConfig_Validate(t *testing.T) {
	cfg := validClassifierConfig()
	assert.NoError(t, cfg.Validate())

	invalid := validClassifierConfig()
	invalid.BatchSize = 0
	assert.Error(t, invalid.Validate())
}
