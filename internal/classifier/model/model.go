// Package model provides domain models for comment classification.
package model

import (
	"errors"
	"time"
)

// Comment categories.
const (
	CategoryCosmetic   = "cosmetic"
	CategoryLogic      = "logic"
	CategoryStructural = "structural"
	CategoryNit        = "nit"
	CategoryQuestion   = "question"
)

// KnownCategory reports whether the backend returned a category we store.
func KnownCategory(category string) bool {
	switch category {
	case CategoryCosmetic, CategoryLogic, CategoryStructural, CategoryNit, CategoryQuestion:
		return true
	}
	return false
}

var (
	// ErrBackendDisabled indicates no classification backend is configured.
	ErrBackendDisabled = errors.New("classification backend disabled")
)

// Classification is one backend verdict for a batch position.
type Classification struct {
	Index        int    `json:"index"`
	Category     string `json:"category"`
	QualityScore int    `json:"quality_score"`
}

// CommentQuality persists a comment's classification. Matches the
// comment_quality table schema.
type CommentQuality struct {
	CommentSourceID string    `gorm:"primaryKey;column:comment_source_id;type:varchar(255)" json:"comment_source_id"`
	RepoID          string    `gorm:"column:repo_id;type:varchar(255);not null;index"       json:"repo_id"`
	PullRequestID   string    `gorm:"column:pull_request_id;type:varchar(255);not null;index" json:"pull_request_id"`
	Category        string    `gorm:"column:category;type:varchar(32);not null"             json:"category"`
	QualityScore    int       `gorm:"column:quality_score;type:int;not null"                json:"quality_score"`
	ClassifiedAt    time.Time `gorm:"column:classified_at;not null"        json:"classified_at"`
}

// TableName specifies the table name for GORM.
func (CommentQuality) TableName() string {
	return "comment_quality"
}

// Stats summarizes one classification run.
type Stats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}
