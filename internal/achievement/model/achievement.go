// Package model provides domain models for achievements.
package model

import (
	"time"

	userModel "github.com/dapplion/review-royale/internal/user/model"
)

// Rarity buckets achievements for presentation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Predicate decides whether a user's aggregate satisfies an achievement.
type Predicate func(u *userModel.User) bool

// Definition is one entry of the achievement catalog. Definitions are
// static data; unlock state lives in achievement_unlocks.
type Definition struct {
	ID          string
	Name        string
	Description string
	Emoji       string
	XPReward    int
	Rarity      Rarity
	Predicate   Predicate
}

// UnlockRecord marks that a user earned an achievement. The primary key
// makes unlocks naturally idempotent. Matches the achievement_unlocks
// table schema.
type UnlockRecord struct {
	UserID        string    `gorm:"primaryKey;column:user_id;type:varchar(255)"       json:"user_id"`
	AchievementID string    `gorm:"primaryKey;column:achievement_id;type:varchar(64)" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"column:unlocked_at;not null"      json:"unlocked_at"`
	Notified      bool      `gorm:"column:notified;type:boolean;not null;default:false" json:"notified"`
}

// TableName specifies the table name for GORM.
func (UnlockRecord) TableName() string {
	return "achievement_unlocks"
}

// PendingUnlock joins an unlock with its catalog entry for notification.
type PendingUnlock struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Emoji         string    `json:"emoji"`
	Rarity        Rarity    `json:"rarity"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
