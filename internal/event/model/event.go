// Package model provides domain models for the raw event log.
package model

import (
	"time"
)

// Kind discriminates raw event types.
type Kind string

// Raw event kinds.
const (
	KindCommitPushed       Kind = "commit_pushed"
	KindCommentPosted      Kind = "comment_posted"
	KindReviewStateChanged Kind = "review_state_changed"
)

// ReviewState is the state carried by a review_state_changed event.
type ReviewState string

// Review states as reported by the hosting API.
const (
	StateApproved         ReviewState = "approved"
	StateChangesRequested ReviewState = "changes_requested"
	StateCommented        ReviewState = "commented"
	StateDismissed        ReviewState = "dismissed"
)

// RawEvent is one immutable unit of review activity pulled from the
// hosting API. The event log is append-only; every derived entity
// (sessions, scores, aggregates) is recomputable from it.
// Matches the raw_events table schema.
type RawEvent struct {
	ID            string      `gorm:"primaryKey;column:id;type:varchar(36)"                                   json:"id"`
	SourceID      string      `gorm:"column:source_id;type:varchar(255);not null;uniqueIndex:idx_events_source_id" json:"source_id"`
	RepoID        string      `gorm:"column:repo_id;type:varchar(36);not null;index:idx_events_repo_id"       json:"repo_id"`
	PullRequestID string      `gorm:"column:pull_request_id;type:varchar(255);not null;index:idx_events_pr_id" json:"pull_request_id"`
	PRAuthor      string      `gorm:"column:pr_author;type:varchar(255);not null"                             json:"pr_author"`
	Actor         string      `gorm:"column:actor;type:varchar(255);not null;index:idx_events_actor"          json:"actor"`
	Kind          Kind        `gorm:"column:kind;type:varchar(32);not null"                                   json:"kind"`
	OccurredAt    time.Time   `gorm:"column:occurred_at;not null;index:idx_events_occurred_at" json:"occurred_at"`
	Seq           int64       `gorm:"column:seq;type:bigint;not null"                                         json:"seq"`
	Body          string      `gorm:"column:body;type:text"                                                   json:"body,omitempty"`
	BodyLength    int         `gorm:"column:body_length;type:int;not null;default:0"                          json:"body_length"`
	ReviewState   ReviewState `gorm:"column:review_state;type:varchar(32)"                                    json:"review_state,omitempty"`
	CommitSHA     string      `gorm:"column:commit_sha;type:varchar(64)"                                      json:"commit_sha,omitempty"`
}

// TableName specifies the table name for GORM.
func (RawEvent) TableName() string {
	return "raw_events"
}

// IsStateChange reports whether the event carries an approval or a
// changes-request. Plain "commented" submissions do not count.
func (e *RawEvent) IsStateChange() bool {
	return e.Kind == KindReviewStateChanged &&
		(e.ReviewState == StateApproved || e.ReviewState == StateChangesRequested)
}
