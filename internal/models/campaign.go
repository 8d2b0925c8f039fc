package models

import (
	"time"
)

// Campaign statuses. A campaign never flips to completed by itself when the
// target is reached; an admin must approve the transition, so reaching the
// target only marks it completion-pending.
const (
	CampaignStatusActive            = "active"
	CampaignStatusCompletionPending = "completion_pending"
	CampaignStatusCompleted         = "completed"
)

// Campaign represents a tree-planting initiative with a numeric target and a
// time window. PlantedTrees is monotonically non-decreasing while active and
// only moves through approved submissions.
type Campaign struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null;size:255" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	TargetTrees  int       `gorm:"not null" json:"target_trees"`
	PlantedTrees int       `gorm:"not null;default:0" json:"planted_trees"`
	StartDate    time.Time `gorm:"not null" json:"start_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	Status       string    `gorm:"size:50;not null;default:active;index" json:"status"`
	CreatedBy    uint      `gorm:"not null" json:"created_by"`
	Creator      User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Participants []CampaignParticipant `gorm:"foreignKey:CampaignID" json:"participants,omitempty"`
}

// TableName specifies the table name for Campaign model.
func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignParticipant represents a user joined to a campaign.
type CampaignParticipant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CampaignID uint      `gorm:"not null;uniqueIndex:idx_campaign_user" json:"campaign_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_campaign_user" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JoinedAt   time.Time `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for CampaignParticipant model.
func (CampaignParticipant) TableName() string {
	return "campaign_participants"
}

// Tree submission statuses.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// TreeSubmission is a user's planting proof for one campaign. It is created
// pending, mutated exactly once by an admin decision and immutable after.
// Only approved submissions count toward the campaign's planted total and
// the planter's points.
type TreeSubmission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CampaignID uint       `gorm:"not null;index" json:"campaign_id"`
	Campaign   Campaign   `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TreeCount  int        `gorm:"not null" json:"tree_count"`
	PhotoURL   string     `gorm:"type:text" json:"photo_url"`
	Status     string     `gorm:"size:50;not null;default:pending;index" json:"status"`
	ReviewedBy *uint      `json:"reviewed_by"`
	Reviewer   *User      `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for TreeSubmission model.
func (TreeSubmission) TableName() string {
	return "tree_submissions"
}
