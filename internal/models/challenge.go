package models

import (
	"time"
)

// Challenge represents a time-boxed, per-participant progress goal with a
// one-time completion reward.
type Challenge struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"not null;size:255" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	TargetValue      int       `gorm:"not null" json:"target_value"`
	RewardPoints     int       `gorm:"not null" json:"reward_points"`
	StartTime        time.Time `gorm:"not null" json:"start_time"`
	EndTime          time.Time `gorm:"not null;index" json:"end_time"`
	ParticipantCount int       `gorm:"not null;default:0" json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for Challenge model.
func (Challenge) TableName() string {
	return "challenges"
}

// IsExpired reports whether the challenge window has closed at the given time.
// Expiry freezes join and progress updates but never revokes a completion.
func (c *Challenge) IsExpired(now time.Time) bool {
	return !now.Before(c.EndTime)
}

// ChallengeParticipant tracks one user's progress inside a challenge.
// Progress is stored raw (it may exceed TargetValue); completion is one-way
// and the reward is paid exactly once.
type ChallengeParticipant struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ChallengeID uint       `gorm:"not null;uniqueIndex:idx_challenge_user" json:"challenge_id"`
	Challenge   Challenge  `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_challenge_user" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	JoinedAt    time.Time  `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for ChallengeParticipant model.
func (ChallengeParticipant) TableName() string {
	return "challenge_participants"
}
