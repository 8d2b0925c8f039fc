package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// Errors returned by campaign operations.
var (
	ErrAlreadyJoined     = errors.New("already a participant")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyDecided    = errors.New("submission already decided")
)

// CampaignRepository handles campaign and tree-submission database operations.
type CampaignRepository struct {
	db *DB
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(db *DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign.
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	if err := r.db.Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetByID retrieves a campaign by ID.
func (r *CampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.First(&campaign, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get campaign %d: %w", id, err)
	}
	return &campaign, nil
}

// List retrieves campaigns with an optional status filter, newest first.
func (r *CampaignRepository) List(status string) ([]models.Campaign, error) {
	query := r.db.Model(&models.Campaign{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var campaigns []models.Campaign
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Join adds a user to a campaign. The (campaign, user) pair is unique, so a
// double join surfaces as ErrAlreadyJoined.
func (r *CampaignRepository) Join(campaignID, userID uint) error {
	participant := &models.CampaignParticipant{
		CampaignID: campaignID,
		UserID:     userID,
		JoinedAt:   time.Now(),
	}
	if err := r.db.Create(participant).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d in campaign %d: %w", userID, campaignID, ErrAlreadyJoined)
		}
		return fmt.Errorf("failed to join campaign: %w", err)
	}
	return nil
}

// IsParticipant checks whether a user has joined a campaign.
func (r *CampaignRepository) IsParticipant(campaignID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.CampaignParticipant{}).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check campaign participation: %w", err)
	}
	return count > 0, nil
}

// CountParticipants returns the number of users joined to a campaign.
func (r *CampaignRepository) CountParticipants(campaignID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CampaignParticipant{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count campaign participants: %w", err)
	}
	return count, nil
}

// AddPlantedTrees increments a campaign's planted count with a single
// server-side UPDATE, keeping the count monotonic under concurrent approvals,
// and returns the post-increment total read back in the same transaction.
// Callers deciding target crossings must use the returned total, not a count
// read before the increment.
func (r *CampaignRepository) AddPlantedTrees(campaignID uint, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("refusing negative planted count %d for campaign %d", count, campaignID)
	}

	var planted int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Campaign{}).
			Where("id = ?", campaignID).
			UpdateColumn("planted_trees", gorm.Expr("planted_trees + ?", count))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("campaign %d: %w", campaignID, gorm.ErrRecordNotFound)
		}

		var campaign models.Campaign
		if err := tx.Select("planted_trees").First(&campaign, campaignID).Error; err != nil {
			return err
		}
		planted = campaign.PlantedTrees
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add planted trees: %w", err)
	}
	return planted, nil
}

// UpdateStatus transitions a campaign between statuses, guarded so the write
// only lands if the campaign is still in the expected state.
func (r *CampaignRepository) UpdateStatus(campaignID uint, from, to string) error {
	res := r.db.Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaignID, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update campaign status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("campaign %d not in status %s: %w", campaignID, from, ErrInvalidTransition)
	}
	return nil
}

// CreateSubmission creates a pending tree-planting submission.
func (r *CampaignRepository) CreateSubmission(sub *models.TreeSubmission) error {
	if err := r.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create tree submission: %w", err)
	}
	return nil
}

// GetSubmissionByID retrieves a tree submission by ID.
func (r *CampaignRepository) GetSubmissionByID(id uint) (*models.TreeSubmission, error) {
	var sub models.TreeSubmission
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get tree submission %d: %w", id, err)
	}
	return &sub, nil
}

// ListSubmissions retrieves submissions for a campaign with an optional
// status filter, oldest first so review queues drain in order.
func (r *CampaignRepository) ListSubmissions(campaignID uint, status string) ([]models.TreeSubmission, error) {
	query := r.db.Where("campaign_id = ?", campaignID).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var subs []models.TreeSubmission
	if err := query.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tree submissions: %w", err)
	}
	return subs, nil
}

// DecideSubmission records an admin decision on a pending submission.
// The guard on status=pending makes the decision one-shot: a submission that
// was already decided stays immutable and surfaces ErrAlreadyDecided.
func (r *CampaignRepository) DecideSubmission(submissionID, reviewerID uint, approved bool) error {
	status := models.SubmissionStatusRejected
	if approved {
		status = models.SubmissionStatusApproved
	}
	now := time.Now()

	res := r.db.Model(&models.TreeSubmission{}).
		Where("id = ? AND status = ?", submissionID, models.SubmissionStatusPending).
		UpdateColumns(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decide tree submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("submission %d: %w", submissionID, ErrAlreadyDecided)
	}
	return nil
}
