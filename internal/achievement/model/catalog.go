package model

import (
	userModel "github.com/dapplion/review-royale/internal/user/model"
)

// Catalog is the full set of known achievements. Order is presentation
// order; evaluation does not depend on it.
func Catalog() []Definition {
	return []Definition{
		{
			ID:          "first_review",
			Name:        "First Blood",
			Description: "Complete your first review session",
			Emoji:       "🩸",
			XPReward:    10,
			Rarity:      RarityCommon,
			Predicate:   milestone(func(u *userModel.User) int64 { return u.ReviewSessionCount }, 1),
		},
		{
			ID:          "review_10",
			Name:        "Getting Warmed Up",
			Description: "Complete 10 review sessions",
			Emoji:       "🔥",
			XPReward:    25,
			Rarity:      RarityCommon,
			Predicate:   milestone(func(u *userModel.User) int64 { return u.ReviewSessionCount }, 10),
		},
		{
			ID:          "review_50",
			Name:        "Seasoned Reviewer",
			Description: "Complete 50 review sessions",
			Emoji:       "🎖️",
			XPReward:    100,
			Rarity:      RarityUncommon,
			Predicate:   milestone(func(u *userModel.User) int64 { return u.ReviewSessionCount }, 50),
		},
		{
			ID:          "review_100",
			Name:        "Century Club",
			Description: "Complete 100 review sessions",
			Emoji:       "💯",
			XPReward:    250,
			Rarity:      RarityRare,
			Predicate:   milestone(func(u *userModel.User) int64 { return u.ReviewSessionCount }, 100),
		},
		{
			ID:          "speed_demon",
			Name:        "Speed Demon",
			Description: "Review within an hour of the commit, 10 times",
			Emoji:       "⚡",
			XPReward:    50,
			Rarity:      RarityUncommon,
			Predicate:   milestone(func(u *userModel.User) int64 { return u.FastSessionCount }, 10),
		},
		{
			ID:          "review_streak_7",
			Name:        "Week Warrior",
			Description: "Review on 7 consecutive days",
			Emoji:       "📅",
			XPReward:    75,
			Rarity:      RarityRare,
			Predicate: func(u *userModel.User) bool {
				return u.LongestStreakDays >= 7
			},
		},
		{
			ID:          "marathon_day",
			Name:        "Marathon Day",
			Description: "Complete 5 review sessions in a single day",
			Emoji:       "🏃",
			XPReward:    50,
			Rarity:      RarityUncommon,
			Predicate: func(u *userModel.User) bool {
				return u.MaxSessionsInDay >= 5
			},
		},
	}
}

// DefinitionByID looks up a catalog entry.
func DefinitionByID(id string) (Definition, bool) {
	for _, def := range Catalog() {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

func milestone(metric func(u *userModel.User) int64, threshold int64) Predicate {
	return func(u *userModel.User) bool {
		return metric(u) >= threshold
	}
}
