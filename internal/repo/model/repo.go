// Package model provides domain models for tracked repositories.
package model

import (
	"time"
)

// Repository is one tracked source repository. SyncCursor is the
// RFC 3339 updated-at watermark of the last fully completed sync; it
// only advances when a pass succeeds end to end, so a failed pass is
// re-fetched in full next time.
type Repository struct {
	ID           string     `gorm:"primaryKey;column:id;type:varchar(36)"                                  json:"id"`
	Owner        string     `gorm:"column:owner;type:varchar(255);not null;uniqueIndex:idx_repos_owner_name" json:"owner"`
	Name         string     `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_repos_owner_name"  json:"name"`
	TrackedSince time.Time  `gorm:"column:tracked_since;not null"                         json:"tracked_since"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at"                                json:"last_synced_at,omitempty"`
	SyncCursor   *string    `gorm:"column:sync_cursor;type:varchar(64)"                                   json:"sync_cursor,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"                            json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Repository) TableName() string {
	return "repositories"
}

// FullName returns the owner/name form used in logs and responses.
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoStatus pairs a tracked repository with its live sync state.
type RepoStatus struct {
	Repository
	SyncInProgress bool `json:"sync_in_progress"`
}

// SyncReport summarizes one sync pass over a repository.
type SyncReport struct {
	Repo           string        `json:"repo"`
	PullRequests   int           `json:"pull_requests"`
	NewEvents      int64         `json:"new_events"`
	SessionsStored int           `json:"sessions_stored"`
	Duration       time.Duration `json:"duration"`
}
