package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// DiscussionRepository handles discussion, comment and vote database operations.
type DiscussionRepository struct {
	db *DB
}

// NewDiscussionRepository creates a new discussion repository.
func NewDiscussionRepository(db *DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// Create creates a new discussion.
func (r *DiscussionRepository) Create(discussion *models.Discussion) error {
	if err := r.db.Create(discussion).Error; err != nil {
		return fmt.Errorf("failed to create discussion: %w", err)
	}
	return nil
}

// GetByID retrieves a discussion by ID.
func (r *DiscussionRepository) GetByID(id uint) (*models.Discussion, error) {
	var discussion models.Discussion
	if err := r.db.First(&discussion, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get discussion %d: %w", id, err)
	}
	return &discussion, nil
}

// List retrieves all discussions.
func (r *DiscussionRepository) List() ([]models.Discussion, error) {
	var discussions []models.Discussion
	if err := r.db.Find(&discussions).Error; err != nil {
		return nil, fmt.Errorf("failed to list discussions: %w", err)
	}
	return discussions, nil
}

// CreateComment appends a comment and bumps the discussion's denormalized
// comment tally in the same transaction.
func (r *DiscussionRepository) CreateComment(comment *models.Comment) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Discussion{}).
			Where("id = ?", comment.DiscussionID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments retrieves the comments of a discussion, oldest first.
func (r *DiscussionRepository) ListComments(discussionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Where("discussion_id = ?", discussionID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// GetVote retrieves a user's active vote on a discussion, or nil when none.
func (r *DiscussionRepository) GetVote(discussionID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.
		Where("discussion_id = ? AND user_id = ?", discussionID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

// ToggleVote applies the single-active-vote rule inside one transaction:
// voting the held direction again clears the vote, voting the opposite
// direction replaces it, and the discussion's tallies move in lockstep.
// Returns the resulting direction, empty when the vote was cleared, and
// whether a brand-new vote was cast.
func (r *DiscussionRepository) ToggleVote(discussionID, userID uint, direction string) (string, bool, error) {
	var result string
	var isNew bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		err := tx.
			Where("discussion_id = ? AND user_id = ?", discussionID, userID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No active vote: cast a new one.
			vote := &models.Vote{
				DiscussionID: discussionID,
				UserID:       userID,
				Direction:    direction,
			}
			if err := tx.Create(vote).Error; err != nil {
				return err
			}
			if err := adjustTally(tx, discussionID, direction, 1); err != nil {
				return err
			}
			result = direction
			isNew = true
			return nil

		case err != nil:
			return err

		case existing.Direction == direction:
			// Same direction again: back to no vote, never flipped.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := adjustTally(tx, discussionID, direction, -1); err != nil {
				return err
			}
			result = ""
			return nil

		default:
			// Opposite direction: replace, leaving exactly one active vote.
			// UpdateColumn mutates existing.Direction, so hold on to the
			// old direction for the tally it has to release.
			old := existing.Direction
			if err := tx.Model(&existing).UpdateColumn("direction", direction).Error; err != nil {
				return err
			}
			if err := adjustTally(tx, discussionID, old, -1); err != nil {
				return err
			}
			if err := adjustTally(tx, discussionID, direction, 1); err != nil {
				return err
			}
			result = direction
			return nil
		}
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to toggle vote: %w", err)
	}
	return result, isNew, nil
}

// adjustTally moves a discussion's denormalized vote tally by delta.
func adjustTally(tx *gorm.DB, discussionID uint, direction string, delta int) error {
	column := "upvotes"
	if direction == models.VoteDown {
		column = "downvotes"
	}
	return tx.Model(&models.Discussion{}).
		Where("id = ?", discussionID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
