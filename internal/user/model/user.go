// Package model provides domain models for user aggregates.
package model

import (
	"time"
)

// User holds the cumulative counters derived from a reviewer's scored
// sessions. Fully recomputable by folding the session list from scratch.
// Matches the users table schema.
type User struct {
	UserID             string     `gorm:"primaryKey;column:user_id;type:varchar(255)"        json:"user_id"`
	XP                 int64      `gorm:"column:xp;type:bigint;not null;default:0"           json:"xp"`
	Level              int        `gorm:"column:level;type:int;not null;default:1"           json:"level"`
	ReviewSessionCount int64      `gorm:"column:review_session_count;type:bigint;not null;default:0" json:"review_session_count"`
	FastSessionCount   int64      `gorm:"column:fast_session_count;type:bigint;not null;default:0"   json:"fast_session_count"`
	CurrentStreakDays  int        `gorm:"column:current_streak_days;type:int;not null;default:0"     json:"current_streak_days"`
	LongestStreakDays  int        `gorm:"column:longest_streak_days;type:int;not null;default:0"     json:"longest_streak_days"`
	MaxSessionsInDay   int        `gorm:"column:max_sessions_in_day;type:int;not null;default:0"     json:"max_sessions_in_day"`
	LastSessionDay     *time.Time `gorm:"column:last_session_day"                   json:"last_session_day,omitempty"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null"                json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
