package models

import (
	"time"
)

// PointsEntry is one append-only row in a user's points ledger.
// IdempotencyKey carries a unique index so the same logical award can be
// retried without ever crediting twice.
type PointsEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ActionKind     string    `gorm:"size:50;not null;index" json:"action_kind"`
	Delta          int       `gorm:"not null" json:"delta"`
	IdempotencyKey string    `gorm:"uniqueIndex;not null;size:128" json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for PointsEntry model.
func (PointsEntry) TableName() string {
	return "points_entries"
}

// BadgeAward records a badge tier earned by a user. Awards are append-only
// and monotonic by tier threshold; the (user_id, tier) pair is unique.
type BadgeAward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_tier" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tier      string    `gorm:"size:100;not null;uniqueIndex:idx_user_tier" json:"tier"`
	Threshold int       `gorm:"not null" json:"threshold"`
	EarnedAt  time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for BadgeAward model.
func (BadgeAward) TableName() string {
	return "badge_awards"
}
