// Package challenges manages time-boxed challenges: enrollment, progress
// tracking and the exactly-once completion reward.
package challenges

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	prommetrics "github.com/Howards254/maathai-innovation-catalyst/internal/metrics"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/notifier"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/points"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Errors returned by challenge operations.
var (
	ErrUnauthorized     = errors.New("operation requires admin role")
	ErrChallengeExpired = errors.New("challenge window has closed")
	ErrNotJoined        = errors.New("user has not joined the challenge")
	ErrInvalidInput     = errors.New("invalid input")
)

// ChallengeRepository interface for challenge operations.
type ChallengeRepository interface {
	Create(challenge *models.Challenge) error
	GetByID(id uint) (*models.Challenge, error)
	List(activeAt time.Time) ([]models.Challenge, error)
	Join(challengeID, userID uint) (*models.ChallengeParticipant, error)
	GetParticipant(challengeID, userID uint) (*models.ChallengeParticipant, error)
	ListParticipants(challengeID uint) ([]models.ChallengeParticipant, error)
	AddProgress(challengeID, userID uint, delta int) (*models.ChallengeParticipant, error)
	MarkCompleted(challengeID, userID uint) (bool, error)
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// PointsService interface for paying completion rewards.
type PointsService interface {
	Award(ctx context.Context, userID uint, kind rules.ActionKind, multiplier int, idempotencyKey string) (*points.AwardOutcome, error)
}

// Service handles challenge enrollment and progress.
type Service struct {
	challengeRepo ChallengeRepository
	userRepo      UserRepository
	pointsSvc     PointsService
	notify        notifier.Notifier
	log           *logger.Logger
}

// Status is one participant's view of a challenge.
type Status struct {
	Challenge       *models.Challenge    `json:"challenge"`
	State           rules.ChallengeState `json:"state"`
	Progress        int                  `json:"progress"`
	DisplayProgress int                  `json:"display_progress"`
	Completed       bool                 `json:"completed"`
	RewardPaid      bool                 `json:"reward_paid"`
}

// NewService creates a new challenge service.
func NewService(
	challengeRepo *repository.ChallengeRepository,
	userRepo *repository.UserRepository,
	pointsSvc PointsService,
	notify notifier.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		challengeRepo: challengeRepo,
		userRepo:      userRepo,
		pointsSvc:     pointsSvc,
		notify:        notify,
		log:           log,
	}
}

// NewServiceWithInterfaces creates a new challenge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	challengeRepo ChallengeRepository,
	userRepo UserRepository,
	pointsSvc PointsService,
	notify notifier.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		challengeRepo: challengeRepo,
		userRepo:      userRepo,
		pointsSvc:     pointsSvc,
		notify:        notify,
		log:           log,
	}
}

// CreateChallenge creates a challenge. Admin only.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) CreateChallenge(ctx context.Context, actor *models.User, title, description string, targetValue, rewardPoints int, start, end time.Time) (*models.Challenge, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if targetValue <= 0 {
		return nil, fmt.Errorf("%w: target must be positive", ErrInvalidInput)
	}
	if rewardPoints <= 0 {
		return nil, fmt.Errorf("%w: reward must be positive", ErrInvalidInput)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: challenge window is empty", ErrInvalidInput)
	}

	challenge := &models.Challenge{
		Title:        title,
		Description:  description,
		TargetValue:  targetValue,
		RewardPoints: rewardPoints,
		StartTime:    start,
		EndTime:      end,
	}
	if err := s.challengeRepo.Create(challenge); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("challenge_id", challenge.ID).
		Str("title", title).
		Int("target", targetValue).
		Int("reward", rewardPoints).
		Msg("Challenge created")

	return challenge, nil
}

// ListActive lists challenges whose window contains now.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListActive(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	return s.challengeRepo.List(now)
}

// Join enrolls a user in an open challenge.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Join(ctx context.Context, challengeID, userID uint, now time.Time) (*models.ChallengeParticipant, error) {
	challenge, err := s.challengeRepo.GetByID(challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.IsExpired(now) {
		return nil, fmt.Errorf("challenge %d: %w", challengeID, ErrChallengeExpired)
	}

	participant, err := s.challengeRepo.Join(challengeID, userID)
	if err != nil {
		return nil, err
	}

	prommetrics.SetChallengeParticipants(
		strconv.FormatUint(uint64(challengeID), 10),
		challenge.ParticipantCount+1,
	)

	return participant, nil
}

// UpdateProgress adds to a participant's progress. Crossing the target pays
// the reward exactly once: the completion flag's guarded flip arbitrates
// concurrent updates, and the reward's idempotency key backs that up.
// Progress past the target accumulates raw but never pays again.
func (s *Service) UpdateProgress(ctx context.Context, challengeID, userID uint, delta int, now time.Time) (*Status, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: progress delta must be positive", ErrInvalidInput)
	}

	challenge, err := s.challengeRepo.GetByID(challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.IsExpired(now) {
		return nil, fmt.Errorf("challenge %d: %w", challengeID, ErrChallengeExpired)
	}

	existing, err := s.challengeRepo.GetParticipant(challengeID, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotJoined)
	}

	participant, err := s.challengeRepo.AddProgress(challengeID, userID, delta)
	if err != nil {
		return nil, err
	}

	rewardPaid := false
	if rules.ReachedTarget(participant.Completed, participant.Progress, challenge.TargetValue) {
		rewardPaid, err = s.payReward(ctx, challenge, userID)
		if err != nil {
			return nil, err
		}
		if rewardPaid {
			participant.Completed = true
		}
	}

	return &Status{
		Challenge:       challenge,
		State:           rules.ChallengeStateFor(true, participant.Completed, participant.Progress, challenge.TargetValue),
		Progress:        participant.Progress,
		DisplayProgress: rules.DisplayProgress(participant.Progress, challenge.TargetValue),
		Completed:       participant.Completed,
		RewardPaid:      rewardPaid,
	}, nil
}

// payReward flips the participant to completed and credits the reward. Only
// the caller that wins the completion guard pays.
func (s *Service) payReward(ctx context.Context, challenge *models.Challenge, userID uint) (bool, error) {
	won, err := s.challengeRepo.MarkCompleted(challenge.ID, userID)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	key := fmt.Sprintf("challenge:%d:completed:%d", challenge.ID, userID)
	if _, err := s.pointsSvc.Award(ctx, userID, rules.ActionChallengeCompleted, challenge.RewardPoints, key); err != nil {
		s.log.Error().
			Err(err).
			Uint("challenge_id", challenge.ID).
			Uint("user_id", userID).
			Msg("Failed to credit challenge reward")
		return true, nil
	}

	prommetrics.RecordChallengeCompletion()

	if s.notify != nil {
		username := fmt.Sprintf("user-%d", userID)
		if user, err := s.userRepo.GetByID(userID); err == nil {
			username = user.Username
		}
		if err := s.notify.AnnounceChallengeCompletion(username, challenge.Title, challenge.RewardPoints); err != nil {
			s.log.Warn().
				Err(err).
				Uint("challenge_id", challenge.ID).
				Msg("Failed to announce challenge completion")
		}
	}

	s.log.Info().
		Uint("challenge_id", challenge.ID).
		Uint("user_id", userID).
		Int("reward", challenge.RewardPoints).
		Msg("Challenge completed, reward paid")

	return true, nil
}

// GetStatus returns one user's view of a challenge.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetStatus(ctx context.Context, challengeID, userID uint) (*Status, error) {
	challenge, err := s.challengeRepo.GetByID(challengeID)
	if err != nil {
		return nil, err
	}

	participant, err := s.challengeRepo.GetParticipant(challengeID, userID)
	if err != nil {
		return nil, err
	}

	if participant == nil {
		return &Status{
			Challenge: challenge,
			State:     rules.ChallengeNotJoined,
		}, nil
	}

	return &Status{
		Challenge:       challenge,
		State:           rules.ChallengeStateFor(true, participant.Completed, participant.Progress, challenge.TargetValue),
		Progress:        participant.Progress,
		DisplayProgress: rules.DisplayProgress(participant.Progress, challenge.TargetValue),
		Completed:       participant.Completed,
	}, nil
}
