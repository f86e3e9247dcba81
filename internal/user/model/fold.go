package model

import (
	"time"

	sessionModel "github.com/dapplion/review-royale/internal/session/model"
	"github.com/dapplion/review-royale/internal/session/scoring"
)

// Fold rebuilds a user's aggregate from their full session list, which
// must be ordered by window start ascending. Streaks are counted over
// consecutive UTC calendar days with at least one session each.
func Fold(userID string, sessions []sessionModel.ReviewSession, now time.Time) User {
	u := User{
		UserID:    userID,
		Level:     1,
		UpdatedAt: now,
	}

	var (
		lastDay       time.Time
		streak        int
		sessionsInDay int
	)

	for i := range sessions {
		s := &sessions[i]

		u.XP += int64(s.XPEarned)
		u.ReviewSessionCount++
		if isFastSession(s) {
			u.FastSessionCount++
		}

		day := s.WindowStart.UTC().Truncate(24 * time.Hour)
		switch {
		case lastDay.IsZero() || !day.Equal(lastDay) && !day.Equal(lastDay.Add(24*time.Hour)):
			streak = 1
			sessionsInDay = 1
		case day.Equal(lastDay):
			sessionsInDay++
		default: // next consecutive day
			streak++
			sessionsInDay = 1
		}
		lastDay = day

		if streak > u.LongestStreakDays {
			u.LongestStreakDays = streak
		}
		if sessionsInDay > u.MaxSessionsInDay {
			u.MaxSessionsInDay = sessionsInDay
		}
	}

	u.Level = Level(u.XP)
	u.CurrentStreakDays = streak
	if !lastDay.IsZero() {
		d := lastDay
		u.LastSessionDay = &d

		// A streak that last advanced more than a day ago is broken.
		if now.UTC().Truncate(24*time.Hour).Sub(lastDay) > 24*time.Hour {
			u.CurrentStreakDays = 0
		}
	}

	return u
}

func isFastSession(s *sessionModel.ReviewSession) bool {
	if s.SecondsSinceLastCommit == nil {
		return false
	}
	secs := *s.SecondsSinceLastCommit
	return secs >= 0 && time.Duration(secs)*time.Second < scoring.FastReviewWindow
}
