package repository

import (
	"fmt"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// InnovationRepository handles innovation submission database operations.
type InnovationRepository struct {
	db *DB
}

// NewInnovationRepository creates a new innovation repository.
func NewInnovationRepository(db *DB) *InnovationRepository {
	return &InnovationRepository{db: db}
}

// Create creates a pending innovation submission.
func (r *InnovationRepository) Create(sub *models.InnovationSubmission) error {
	if err := r.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create innovation submission: %w", err)
	}
	return nil
}

// GetByID retrieves an innovation submission by ID.
func (r *InnovationRepository) GetByID(id uint) (*models.InnovationSubmission, error) {
	var sub models.InnovationSubmission
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get innovation submission %d: %w", id, err)
	}
	return &sub, nil
}

// ListByUser retrieves a user's innovation submissions, newest first.
func (r *InnovationRepository) ListByUser(userID uint) ([]models.InnovationSubmission, error) {
	var subs []models.InnovationSubmission
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list innovation submissions: %w", err)
	}
	return subs, nil
}

// ListByStatus retrieves innovation submissions by status, oldest first so
// the review queue drains in order.
func (r *InnovationRepository) ListByStatus(status string) ([]models.InnovationSubmission, error) {
	var subs []models.InnovationSubmission
	err := r.db.
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list innovation submissions: %w", err)
	}
	return subs, nil
}

// Decide records an admin decision on a pending submission. One-way per
// review cycle: only a pending row accepts a decision.
func (r *InnovationRepository) Decide(submissionID, reviewerID uint, approved bool) error {
	status := models.SubmissionStatusRejected
	if approved {
		status = models.SubmissionStatusApproved
	}
	now := time.Now()

	res := r.db.Model(&models.InnovationSubmission{}).
		Where("id = ? AND status = ?", submissionID, models.SubmissionStatusPending).
		UpdateColumns(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decide innovation submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("innovation submission %d: %w", submissionID, ErrAlreadyDecided)
	}
	return nil
}

// Resubmit returns a rejected submission to the review queue on the same
// row, with updated content. The entity identity is preserved across cycles.
func (r *InnovationRepository) Resubmit(submissionID uint, title, summary string) error {
	now := time.Now()
	res := r.db.Model(&models.InnovationSubmission{}).
		Where("id = ? AND status = ?", submissionID, models.SubmissionStatusRejected).
		UpdateColumns(map[string]interface{}{
			"title":       title,
			"summary":     summary,
			"status":      models.SubmissionStatusPending,
			"reviewed_by": nil,
			"reviewed_at": nil,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to resubmit innovation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("innovation submission %d not rejected: %w", submissionID, ErrInvalidTransition)
	}
	return nil
}
