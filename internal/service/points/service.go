// Package points credits point-earning actions to user ledgers and grants
// badge tiers as thresholds are crossed.
package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	prommetrics "github.com/Howards254/maathai-innovation-catalyst/internal/metrics"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/notifier"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// LedgerRepository interface for ledger and badge operations.
type LedgerRepository interface {
	RecordEntry(entry *models.PointsEntry) (int, error)
	HasEntry(idempotencyKey string) (bool, error)
	ListByUser(userID uint, limit int) ([]models.PointsEntry, error)
	AwardTier(userID uint, tier string, threshold int) (bool, error)
	GetUserAwards(userID uint) ([]models.BadgeAward, error)
}

// Service credits points and grants badges.
type Service struct {
	userRepo   UserRepository
	ledgerRepo LedgerRepository
	notify     notifier.Notifier
	values     map[rules.ActionKind]int
	log        *logger.Logger
}

// AwardOutcome reports one processed award.
type AwardOutcome struct {
	UserID    uint              `json:"user_id"`
	NewTotal  int               `json:"new_total"`
	Delta     int               `json:"delta"`
	Tier      rules.BadgeTier   `json:"tier"`
	NewBadges []rules.BadgeTier `json:"new_badges,omitempty"`
	Replayed  bool              `json:"replayed"`
}

// Summary is a user's scoring state.
type Summary struct {
	UserID   uint                 `json:"user_id"`
	Username string               `json:"username"`
	Points   int                  `json:"points"`
	Tier     rules.BadgeTier      `json:"tier"`
	Badges   []models.BadgeAward  `json:"badges"`
	Recent   []models.PointsEntry `json:"recent"`
}

// NewService creates a new points service.
func NewService(
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	notify notifier.Notifier,
	pointsCfg *config.PointsConfig,
	log *logger.Logger,
) *Service {
	return newService(userRepo, ledgerRepo, notify, pointsCfg, log)
}

// NewServiceWithInterfaces creates a new points service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	ledgerRepo LedgerRepository,
	notify notifier.Notifier,
	pointsCfg *config.PointsConfig,
	log *logger.Logger,
) *Service {
	return newService(userRepo, ledgerRepo, notify, pointsCfg, log)
}

func newService(
	userRepo UserRepository,
	ledgerRepo LedgerRepository,
	notify notifier.Notifier,
	pointsCfg *config.PointsConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		notify:     notify,
		values:     configuredValues(pointsCfg),
		log:        log,
	}
}

// configuredValues maps config overrides onto the default point values.
// Zero config values keep the default.
func configuredValues(cfg *config.PointsConfig) map[rules.ActionKind]int {
	values := make(map[rules.ActionKind]int)
	if cfg == nil {
		return values
	}
	overrides := map[rules.ActionKind]int{
		rules.ActionDiscussionCreated:   cfg.DiscussionCreated,
		rules.ActionCommentCreated:      cfg.CommentCreated,
		rules.ActionVoteCast:            cfg.VoteCast,
		rules.ActionTreeApproved:        cfg.TreeApproved,
		rules.ActionInnovationSubmitted: cfg.InnovationSubmitted,
		rules.ActionInnovationApproved:  cfg.InnovationApproved,
	}
	for kind, v := range overrides {
		if v > 0 {
			values[kind] = v
		}
	}
	return values
}

// baseValue resolves the per-action point value, preferring config overrides.
func (s *Service) baseValue(kind rules.ActionKind) (int, error) {
	if v, ok := s.values[kind]; ok {
		return v, nil
	}
	return rules.PointValue(kind)
}

// NewIdempotencyKey mints a key for awards that have no natural one.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// Award credits one point-earning action to a user. The idempotency key makes
// retries safe: a replayed key returns the user's current state without a
// second credit. Badge tiers crossed by the new total are granted and
// announced.
func (s *Service) Award(ctx context.Context, userID uint, kind rules.ActionKind, multiplier int, idempotencyKey string) (*AwardOutcome, error) {
	base, err := s.baseValue(kind)
	if err != nil {
		return nil, err
	}
	if multiplier < 1 {
		return nil, fmt.Errorf("%w: multiplier %d", rules.ErrNegativeDelta, multiplier)
	}
	delta := base * multiplier

	if idempotencyKey == "" {
		idempotencyKey = NewIdempotencyKey()
	}

	entry := &models.PointsEntry{
		UserID:         userID,
		ActionKind:     string(kind),
		Delta:          delta,
		IdempotencyKey: idempotencyKey,
	}
	// Entry and credit commit together, so a failure here leaves the
	// idempotency key unrecorded and the award safe to retry.
	newTotal, err := s.ledgerRepo.RecordEntry(entry)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return s.replayedOutcome(userID, delta)
		}
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}
	oldTotal := newTotal - delta

	prommetrics.RecordPointsAwarded(string(kind), delta)

	// Every actor holds the base tier from their first scored action.
	base0 := rules.BaseTier()
	if _, err := s.ledgerRepo.AwardTier(userID, base0.Name, base0.Threshold); err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to grant base tier")
	}

	crossed := rules.TiersCrossed(oldTotal, newTotal)
	newBadges := s.grantTiers(userID, newTotal, crossed)

	s.log.Info().
		Uint("user_id", userID).
		Str("action", string(kind)).
		Int("delta", delta).
		Int("new_total", newTotal).
		Int("badges_granted", len(newBadges)).
		Msg("Points awarded")

	return &AwardOutcome{
		UserID:    userID,
		NewTotal:  newTotal,
		Delta:     delta,
		Tier:      rules.ResolveTier(newTotal),
		NewBadges: newBadges,
	}, nil
}

// replayedOutcome builds the outcome for an award whose key was already
// processed. The ledger is untouched; the caller sees the current state.
func (s *Service) replayedOutcome(userID uint, delta int) (*AwardOutcome, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for replayed award: %w", err)
	}

	s.log.Debug().
		Uint("user_id", userID).
		Msg("Replayed award, returning current state")

	return &AwardOutcome{
		UserID:   userID,
		NewTotal: user.Points,
		Delta:    delta,
		Tier:     rules.ResolveTier(user.Points),
		Replayed: true,
	}, nil
}

// grantTiers grants crossed tiers, recording metrics and announcing each one
// actually new. Announcement failures are logged, never propagated.
func (s *Service) grantTiers(userID uint, newTotal int, crossed []rules.BadgeTier) []rules.BadgeTier {
	var granted []rules.BadgeTier
	for _, tier := range crossed {
		isNew, err := s.ledgerRepo.AwardTier(userID, tier.Name, tier.Threshold)
		if err != nil {
			s.log.Error().
				Err(err).
				Uint("user_id", userID).
				Str("tier", tier.Name).
				Msg("Failed to grant badge tier")
			continue
		}
		if !isNew {
			continue
		}

		granted = append(granted, tier)
		prommetrics.RecordBadgeAwarded(tier.Name)

		if s.notify != nil {
			user, err := s.userRepo.GetByID(userID)
			username := fmt.Sprintf("user-%d", userID)
			if err == nil {
				username = user.Username
			}
			if err := s.notify.AnnounceBadge(username, tier.Name, newTotal); err != nil {
				s.log.Warn().
					Err(err).
					Str("tier", tier.Name).
					Msg("Failed to announce badge")
			}
		}
	}
	return granted
}

// GetSummary returns a user's scoring state: total, derived tier, held
// badges and recent ledger entries.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetSummary(ctx context.Context, userID uint) (*Summary, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	awards, err := s.ledgerRepo.GetUserAwards(userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.ledgerRepo.ListByUser(userID, 20)
	if err != nil {
		return nil, err
	}

	return &Summary{
		UserID:   user.ID,
		Username: user.Username,
		Points:   user.Points,
		Tier:     rules.ResolveTier(user.Points),
		Badges:   awards,
		Recent:   recent,
	}, nil
}

// GetLedger returns a user's ledger entries, newest first.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetLedger(ctx context.Context, userID uint, limit int) ([]models.PointsEntry, error) {
	return s.ledgerRepo.ListByUser(userID, limit)
}
