// Package scoring computes XP for finalized review sessions.
package scoring

import (
	"time"

	sessionModel "github.com/dapplion/review-royale/internal/session/model"
)

// XP formula constants.
const (
	BaseXP               = 10
	SubstantiveCommentXP = 5
	FastReviewXP         = 10
	ThoroughXP           = 5
	DeepXP               = 10

	thoroughThreshold = 5
	deepThreshold     = 10

	// FastReviewWindow is the maximum delay between the last author
	// commit and the session start for the fast bonus.
	FastReviewWindow = time.Hour
)

// Quality tier XP for classified comments.
const (
	lowTierXP    = 2
	mediumTierXP = 5
	highTierXP   = 8
)

// Category bonuses on top of the tier XP.
const (
	logicBonus      = 3
	structuralBonus = 2
)

// CommentQuality is one comment's external classification.
type CommentQuality struct {
	Category     string
	QualityScore int
}

// Score computes the XP earned by a finalized session. The quality map
// is keyed by comment source id; pass nil for flat scoring. Classified
// comments earn tier XP plus a category bonus in place of the flat
// per-comment rate; unclassified or malformed entries fall back to the
// flat rate. Score never fails and never returns a negative value.
func Score(s *sessionModel.ReviewSession, quality map[string]CommentQuality) int {
	xp := BaseXP

	for _, c := range s.Comments {
		xp += commentXP(c, quality)
	}

	if isFast(s) {
		xp += FastReviewXP
	}
	if s.CommentCount > thoroughThreshold {
		xp += ThoroughXP
	}
	if s.CommentCount > deepThreshold {
		xp += DeepXP
	}

	return xp
}

// commentXP scores a single comment: quality-weighted when a valid
// classification exists, flat otherwise.
func commentXP(c sessionModel.CommentRef, quality map[string]CommentQuality) int {
	q, ok := quality[c.SourceID]
	if !ok || q.QualityScore < 1 || q.QualityScore > 10 {
		if c.Substantive {
			return SubstantiveCommentXP
		}
		return 0
	}

	xp := tierXP(q.QualityScore)
	switch q.Category {
	case "logic":
		xp += logicBonus
	case "structural":
		xp += structuralBonus
	}
	return xp
}

func tierXP(score int) int {
	switch {
	case score <= 3:
		return lowTierXP
	case score <= 6:
		return mediumTierXP
	default:
		return highTierXP
	}
}

// isFast reports whether the session opened within an hour of the last
// author commit. Sessions with no prior commit are never fast.
func isFast(s *sessionModel.ReviewSession) bool {
	if s.SecondsSinceLastCommit == nil {
		return false
	}
	secs := *s.SecondsSinceLastCommit
	return secs >= 0 && time.Duration(secs)*time.Second < FastReviewWindow
}
