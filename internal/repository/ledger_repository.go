package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// ErrDuplicateEntry is returned when a ledger write replays an idempotency
// key that was already recorded.
var ErrDuplicateEntry = errors.New("ledger entry already recorded")

// LedgerRepository handles the append-only points ledger and badge awards.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// RecordEntry appends a points entry and credits the user's cumulative
// points in the same transaction, returning the new total. The idempotency
// key carries a unique index, so a replayed award surfaces as
// ErrDuplicateEntry instead of a second credit — and because entry and
// credit commit together, a failed credit rolls the key back and leaves
// the award retriable.
func (r *LedgerRepository) RecordEntry(entry *models.PointsEntry) (int, error) {
	if entry.Delta < 0 {
		return 0, fmt.Errorf("refusing negative point delta %d for user %d", entry.Delta, entry.UserID)
	}

	var newTotal int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("idempotency key %s: %w", entry.IdempotencyKey, ErrDuplicateEntry)
			}
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", entry.UserID).
			UpdateColumn("points", gorm.Expr("points + ?", entry.Delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", entry.UserID, gorm.ErrRecordNotFound)
		}

		var user models.User
		if err := tx.Select("points").First(&user, entry.UserID).Error; err != nil {
			return err
		}
		newTotal = user.Points
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return newTotal, nil
}

// HasEntry checks whether an idempotency key was already recorded.
func (r *LedgerRepository) HasEntry(idempotencyKey string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PointsEntry{}).
		Where("idempotency_key = ?", idempotencyKey).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	return count > 0, nil
}

// ListByUser retrieves a user's ledger entries, newest first.
func (r *LedgerRepository) ListByUser(userID uint, limit int) ([]models.PointsEntry, error) {
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.PointsEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// CountEntriesByKind returns how many ledger entries a user has for an action kind.
func (r *LedgerRepository) CountEntriesByKind(userID uint, kind string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PointsEntry{}).
		Where("user_id = ? AND action_kind = ?", userID, kind).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

// AwardTier grants a badge tier to a user. Idempotent: a tier the user
// already holds is left untouched and reported as not newly granted.
func (r *LedgerRepository) AwardTier(userID uint, tier string, threshold int) (bool, error) {
	held, err := r.HasTier(userID, tier)
	if err != nil {
		return false, err
	}
	if held {
		return false, nil
	}

	award := &models.BadgeAward{
		UserID:    userID,
		Tier:      tier,
		Threshold: threshold,
		EarnedAt:  time.Now(),
	}
	if err := r.db.Create(award).Error; err != nil {
		// Concurrent grant of the same tier loses the race on the unique
		// index; treat it as already held.
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to award badge tier: %w", err)
	}
	return true, nil
}

// HasTier checks whether a user holds a badge tier.
func (r *LedgerRepository) HasTier(userID uint, tier string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("user_id = ? AND tier = ?", userID, tier).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check badge tier: %w", err)
	}
	return count > 0, nil
}

// GetUserAwards retrieves all badge awards for a user, ascending by threshold.
func (r *LedgerRepository) GetUserAwards(userID uint) ([]models.BadgeAward, error) {
	var awards []models.BadgeAward
	err := r.db.
		Where("user_id = ?", userID).
		Order("threshold ASC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get badge awards: %w", err)
	}
	return awards, nil
}

// CountAwardsByUser returns the number of badge tiers a user holds.
func (r *LedgerRepository) CountAwardsByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count badge awards: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether an error is a unique-constraint failure.
// Matched textually because the postgres and sqlite drivers surface different
// concrete types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
