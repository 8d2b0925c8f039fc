// Package feed manages community discussions: posts, comments, the
// single-active-vote rule and ranked listings.
package feed

import (
	"context"
	"errors"
	"fmt"

	prommetrics "github.com/Howards254/maathai-innovation-catalyst/internal/metrics"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/points"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Errors returned by feed operations.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidRankMode = errors.New("unknown rank mode")
	ErrInvalidVote     = errors.New("vote direction must be up or down")
)

// DiscussionRepository interface for discussion operations.
type DiscussionRepository interface {
	Create(discussion *models.Discussion) error
	GetByID(id uint) (*models.Discussion, error)
	List() ([]models.Discussion, error)
	CreateComment(comment *models.Comment) error
	ListComments(discussionID uint) ([]models.Comment, error)
	GetVote(discussionID, userID uint) (*models.Vote, error)
	ToggleVote(discussionID, userID uint, direction string) (string, bool, error)
}

// PointsService interface for crediting feed actions.
type PointsService interface {
	Award(ctx context.Context, userID uint, kind rules.ActionKind, multiplier int, idempotencyKey string) (*points.AwardOutcome, error)
}

// Service handles discussions, comments and votes.
type Service struct {
	discussionRepo DiscussionRepository
	pointsSvc      PointsService
	log            *logger.Logger
}

// VoteResult reports the outcome of a vote toggle.
type VoteResult struct {
	Direction  string             `json:"direction"` // empty when the vote was cleared
	Discussion *models.Discussion `json:"discussion"`
}

// NewService creates a new feed service.
func NewService(
	discussionRepo *repository.DiscussionRepository,
	pointsSvc PointsService,
	log *logger.Logger,
) *Service {
	return &Service{
		discussionRepo: discussionRepo,
		pointsSvc:      pointsSvc,
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new feed service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	discussionRepo DiscussionRepository,
	pointsSvc PointsService,
	log *logger.Logger,
) *Service {
	return &Service{
		discussionRepo: discussionRepo,
		pointsSvc:      pointsSvc,
		log:            log,
	}
}

// CreateDiscussion creates a discussion and credits the author. Anonymous
// posts carry no author and earn nothing.
func (s *Service) CreateDiscussion(ctx context.Context, userID uint, anonymous bool, title, body string) (*models.Discussion, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	discussion := &models.Discussion{
		Anonymous: anonymous,
		Title:     title,
		Body:      body,
	}
	if !anonymous {
		discussion.UserID = &userID
	}

	if err := s.discussionRepo.Create(discussion); err != nil {
		return nil, err
	}

	if !anonymous {
		key := fmt.Sprintf("discussion:%d:created", discussion.ID)
		if _, err := s.pointsSvc.Award(ctx, userID, rules.ActionDiscussionCreated, 1, key); err != nil {
			s.log.Error().
				Err(err).
				Uint("discussion_id", discussion.ID).
				Msg("Failed to credit discussion author")
		}
	}

	return discussion, nil
}

// GetDiscussion returns a discussion with its comments.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetDiscussion(ctx context.Context, id uint) (*models.Discussion, []models.Comment, error) {
	discussion, err := s.discussionRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.discussionRepo.ListComments(id)
	if err != nil {
		return nil, nil, err
	}

	return discussion, comments, nil
}

// AddComment appends a comment and credits the commenter.
func (s *Service) AddComment(ctx context.Context, discussionID, userID uint, body string) (*models.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrInvalidInput)
	}

	comment := &models.Comment{
		DiscussionID: discussionID,
		UserID:       userID,
		Body:         body,
	}
	if err := s.discussionRepo.CreateComment(comment); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("comment:%d:created", comment.ID)
	if _, err := s.pointsSvc.Award(ctx, userID, rules.ActionCommentCreated, 1, key); err != nil {
		s.log.Error().
			Err(err).
			Uint("comment_id", comment.ID).
			Msg("Failed to credit commenter")
	}

	return comment, nil
}

// Vote toggles a user's vote on a discussion: the held direction again clears
// it, the opposite replaces it. Only the first-ever vote on a discussion earns
// points; the (discussion, user) idempotency key makes clear-and-recast churn
// worthless.
func (s *Service) Vote(ctx context.Context, discussionID, userID uint, direction string) (*VoteResult, error) {
	if direction != models.VoteUp && direction != models.VoteDown {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVote, direction)
	}

	result, isNew, err := s.discussionRepo.ToggleVote(discussionID, userID, direction)
	if err != nil {
		return nil, err
	}

	switch {
	case result == "":
		prommetrics.RecordVoteCast("cleared")
	case isNew:
		prommetrics.RecordVoteCast("cast")
	default:
		prommetrics.RecordVoteCast("replaced")
	}

	if isNew {
		key := fmt.Sprintf("vote:%d:%d", discussionID, userID)
		if _, err := s.pointsSvc.Award(ctx, userID, rules.ActionVoteCast, 1, key); err != nil {
			s.log.Error().
				Err(err).
				Uint("discussion_id", discussionID).
				Uint("user_id", userID).
				Msg("Failed to credit voter")
		}
	}

	discussion, err := s.discussionRepo.GetByID(discussionID)
	if err != nil {
		return nil, err
	}

	return &VoteResult{
		Direction:  result,
		Discussion: discussion,
	}, nil
}

// ListRanked returns all discussions ordered by the given mode.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListRanked(ctx context.Context, mode rules.RankMode) ([]models.Discussion, error) {
	if !rules.ValidRankMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRankMode, mode)
	}

	discussions, err := s.discussionRepo.List()
	if err != nil {
		return nil, err
	}

	return rules.Rank(discussions, mode), nil
}
