package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// ChallengeRepository handles challenge database operations.
type ChallengeRepository struct {
	db *DB
}

// NewChallengeRepository creates a new challenge repository.
func NewChallengeRepository(db *DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create creates a new challenge.
func (r *ChallengeRepository) Create(challenge *models.Challenge) error {
	if err := r.db.Create(challenge).Error; err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by ID.
func (r *ChallengeRepository) GetByID(id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.First(&challenge, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get challenge %d: %w", id, err)
	}
	return &challenge, nil
}

// List retrieves challenges, newest window first. When activeAt is non-zero
// only challenges whose window contains that instant are returned.
func (r *ChallengeRepository) List(activeAt time.Time) ([]models.Challenge, error) {
	query := r.db.Model(&models.Challenge{}).Order("start_time DESC")
	if !activeAt.IsZero() {
		query = query.Where("start_time <= ? AND end_time > ?", activeAt, activeAt)
	}

	var challenges []models.Challenge
	if err := query.Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// Join enrolls a user in a challenge and bumps the participant counter by
// exactly one, in a single transaction. A double join surfaces as
// ErrAlreadyJoined and leaves the counter untouched.
func (r *ChallengeRepository) Join(challengeID, userID uint) (*models.ChallengeParticipant, error) {
	participant := &models.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      userID,
		JoinedAt:    time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Challenge{}).
			Where("id = ?", challengeID).
			UpdateColumn("participant_count", gorm.Expr("participant_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %d in challenge %d: %w", userID, challengeID, ErrAlreadyJoined)
		}
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}
	return participant, nil
}

// GetParticipant retrieves a user's participation record, or nil when the
// user has not joined.
func (r *ChallengeRepository) GetParticipant(challengeID, userID uint) (*models.ChallengeParticipant, error) {
	var participant models.ChallengeParticipant
	err := r.db.
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get challenge participant: %w", err)
	}
	return &participant, nil
}

// ListParticipants retrieves all participation records of a challenge.
func (r *ChallengeRepository) ListParticipants(challengeID uint) ([]models.ChallengeParticipant, error) {
	var participants []models.ChallengeParticipant
	err := r.db.
		Where("challenge_id = ?", challengeID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list challenge participants: %w", err)
	}
	return participants, nil
}

// AddProgress increments a participant's raw progress server-side and
// returns the updated record. Progress is stored unclamped.
func (r *ChallengeRepository) AddProgress(challengeID, userID uint, delta int) (*models.ChallengeParticipant, error) {
	if delta < 0 {
		return nil, fmt.Errorf("refusing negative progress delta %d", delta)
	}

	res := r.db.Model(&models.ChallengeParticipant{}).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		UpdateColumn("progress", gorm.Expr("progress + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to add challenge progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("participant (%d, %d): %w", challengeID, userID, gorm.ErrRecordNotFound)
	}

	return r.GetParticipant(challengeID, userID)
}

// MarkCompleted flips a participant to completed. The guard on
// completed=false means exactly one caller wins under concurrent updates;
// everyone else sees false and must not pay the reward.
func (r *ChallengeRepository) MarkCompleted(challengeID, userID uint) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.ChallengeParticipant{}).
		Where("challenge_id = ? AND user_id = ? AND completed = ?", challengeID, userID, false).
		UpdateColumns(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark challenge completed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
