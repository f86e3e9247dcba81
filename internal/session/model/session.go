// Package model provides domain models for review sessions.
package model

import (
	"time"

	eventModel "github.com/dapplion/review-royale/internal/event/model"
)

// StateChange is the terminal review verdict folded into a session.
type StateChange string

// Session state changes. A session either carries one of these or none.
const (
	StateChangeApproved         StateChange = "approved"
	StateChangeChangesRequested StateChange = "changes_requested"
)

// CommentRef identifies one comment folded into a session, keeping
// enough information for quality-weighted scoring.
type CommentRef struct {
	SourceID    string
	Substantive bool
}

// ReviewSession is one bounded unit of reviewer activity on a pull
// request, scoped between commit-push boundaries and idle-time gaps.
// Derived from the raw event log and fully recomputable from it.
// Matches the review_sessions table schema.
type ReviewSession struct {
	ID                      string      `gorm:"primaryKey;column:id;type:varchar(36)"                                  json:"id"`
	RepoID                  string      `gorm:"column:repo_id;type:varchar(36);not null;index:idx_sessions_repo_id"    json:"repo_id"`
	PullRequestID           string      `gorm:"column:pull_request_id;type:varchar(255);not null;index:idx_sessions_pr_id" json:"pull_request_id"`
	Reviewer                string      `gorm:"column:reviewer;type:varchar(255);not null;index:idx_sessions_reviewer" json:"reviewer"`
	WindowStart             time.Time   `gorm:"column:window_start;not null"                          json:"window_start"`
	WindowEnd               time.Time   `gorm:"column:window_end;not null"                            json:"window_end"`
	CommentCount            int         `gorm:"column:comment_count;type:int;not null"                                 json:"comment_count"`
	SubstantiveCommentCount int         `gorm:"column:substantive_comment_count;type:int;not null"                     json:"substantive_comment_count"`
	StateChange             StateChange `gorm:"column:state_change;type:varchar(32)"                                   json:"state_change,omitempty"`
	SecondsSinceLastCommit  *int64      `gorm:"column:seconds_since_last_commit;type:bigint"                           json:"seconds_since_last_commit,omitempty"`
	XPEarned                int         `gorm:"column:xp_earned;type:int;not null;default:0"                           json:"xp_earned"`

	// Comments is carried in memory for scoring only; the persisted row
	// keeps counts, the event log keeps the bodies.
	Comments []CommentRef `gorm:"-" json:"-"`
}

// TableName specifies the table name for GORM.
func (ReviewSession) TableName() string {
	return "review_sessions"
}

// HasStateChange reports whether the session ended in a verdict.
func (s *ReviewSession) HasStateChange() bool {
	return s.StateChange != ""
}

// StateChangeFrom maps a raw review state to a session state change.
// Plain comments and dismissals carry no verdict.
func StateChangeFrom(state eventModel.ReviewState) StateChange {
	switch state {
	case eventModel.StateApproved:
		return StateChangeApproved
	case eventModel.StateChangesRequested:
		return StateChangeChangesRequested
	default:
		return ""
	}
}
