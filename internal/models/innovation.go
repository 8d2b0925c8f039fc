package models

import (
	"time"
)

// InnovationSubmission is a user's innovation proposal. Review decisions are
// admin-exclusive and one-way per cycle; resubmitting re-enters review on the
// same row rather than creating a new entity.
type InnovationSubmission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title      string     `gorm:"not null;size:255" json:"title"`
	Summary    string     `gorm:"type:text" json:"summary"`
	Status     string     `gorm:"size:50;not null;default:pending;index" json:"status"`
	ReviewedBy *uint      `json:"reviewed_by"`
	Reviewer   *User      `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for InnovationSubmission model.
func (InnovationSubmission) TableName() string {
	return "innovation_submissions"
}
