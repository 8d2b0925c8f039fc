package models

import (
	"time"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Discussion represents a community discussion post. Upvotes and
// CommentsCount are denormalized tallies maintained by the feed service.
type Discussion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Anonymous     bool      `gorm:"not null;default:false" json:"anonymous"`
	Title         string    `gorm:"not null;size:255" json:"title"`
	Body          string    `gorm:"type:text" json:"body"`
	Upvotes       int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes     int       `gorm:"not null;default:0" json:"downvotes"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Discussion model.
func (Discussion) TableName() string {
	return "discussions"
}

// Comment represents a reply to a discussion.
type Comment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	DiscussionID uint       `gorm:"not null;index" json:"discussion_id"`
	Discussion   Discussion `gorm:"foreignKey:DiscussionID" json:"discussion,omitempty"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName specifies the table name for Comment model.
func (Comment) TableName() string {
	return "comments"
}

// Vote is a user's single active vote on a discussion. The
// (discussion_id, user_id) pair is unique: re-voting the same direction
// deletes the row, voting the opposite direction replaces it.
type Vote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DiscussionID uint      `gorm:"not null;uniqueIndex:idx_discussion_user" json:"discussion_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_discussion_user" json:"user_id"`
	Direction    string    `gorm:"size:10;not null" json:"direction"` // 'up' or 'down'
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Vote model.
func (Vote) TableName() string {
	return "votes"
}
