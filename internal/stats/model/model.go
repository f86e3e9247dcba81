// Package model provides domain models for the stats read side.
package model

import (
	"errors"
	"time"
)

var (
	// ErrInvalidPeriod indicates an unknown leaderboard period.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Period bounds a leaderboard query.
type Period string

// Leaderboard periods.
const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period string; empty means all time.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodAll, nil
	}
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return Period(s), nil
	}
	return "", ErrInvalidPeriod
}

// Since returns the lower time bound of the period relative to now.
// The zero time means unbounded.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.AddDate(0, 0, -1)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// LeaderboardEntry is one ranked reviewer.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Reviewer string `gorm:"column:reviewer"      json:"reviewer"`
	XP       int64  `gorm:"column:xp"            json:"xp"`
	Sessions int64  `gorm:"column:session_count" json:"sessions"`
	Level    int    `json:"level"`
}
