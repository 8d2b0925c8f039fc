// Package innovations manages innovation proposals and their review cycle.
package innovations

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

// Errors returned by innovation operations.
var (
	ErrUnauthorized = errors.New("operation requires admin role")
	ErrNotOwner     = errors.New("only the submitter may resubmit")
	ErrInvalidInput = errors.New("invalid input")
)

// InnovationRepository interface for innovation operations.
type InnovationRepository interface {
	Create(sub *models.InnovationSubmission) error
	GetByID(id uint) (*models.InnovationSubmission, error)
	ListByUser(userID uint) ([]models.InnovationSubmission, error)
	ListByStatus(status string) ([]models.InnovationSubmission, error)
	Decide(submissionID, reviewerID uint, approved bool) error
	Resubmit(submissionID uint, title, summary string) error
}

// PointsService interface for crediting submitters.
type PointsService interface {
	Award(ctx context.Context, userID uint, kind rules.ActionKind, multiplier int, idempotencyKey string) (*points.AwardOutcome, error)
}

// Service handles innovation submissions and reviews.
type Service struct {
	innovationRepo InnovationRepository
	pointsSvc      PointsService
	log            *logger.Logger
}

// NewService creates a new innovation service.
func NewService(
	innovationRepo *repository.InnovationRepository,
	pointsSvc PointsService,
	log *logger.Logger,
) *Service {
	return &Service{
		innovationRepo: innovationRepo,
		pointsSvc:      pointsSvc,
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new innovation service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	innovationRepo InnovationRepository,
	pointsSvc PointsService,
	log *logger.Logger,
) *Service {
	return &Service{
		innovationRepo: innovationRepo,
		pointsSvc:      pointsSvc,
		log:            log,
	}
}

// Submit creates a pending innovation proposal and credits the submitter.
// The credit is keyed to the submission, so later resubmissions of the same
// row never earn the submission points again.
func (s *Service) Submit(ctx context.Context, userID uint, title, summary string) (*models.InnovationSubmission, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	sub := &models.InnovationSubmission{
		UserID:  userID,
		Title:   title,
		Summary: summary,
		Status:  models.SubmissionStatusPending,
	}
	if err := s.innovationRepo.Create(sub); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("innovation:%d:submitted", sub.ID)
	if _, err := s.pointsSvc.Award(ctx, userID, rules.ActionInnovationSubmitted, 1, key); err != nil {
		s.log.Error().
			Err(err).
			Uint("submission_id", sub.ID).
			Msg("Failed to credit innovation submitter")
	}

	s.log.Info().
		Uint("submission_id", sub.ID).
		Uint("user_id", userID).
		Msg("Innovation submitted")

	return sub, nil
}

// Review applies an admin decision to a pending proposal. Approval pays the
// approval bonus exactly once per submission.
func (s *Service) Review(ctx context.Context, actor *models.User, submissionID uint, approved bool) (*models.InnovationSubmission, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	sub, err := s.innovationRepo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}

	if err := s.innovationRepo.Decide(submissionID, actor.ID, approved); err != nil {
		return nil, err
	}

	status := models.SubmissionStatusRejected
	if approved {
		status = models.SubmissionStatusApproved
	}
	prommetrics.RecordInnovationDecision(status)

	if approved {
		key := fmt.Sprintf("innovation:%d:approved", submissionID)
		if _, err := s.pointsSvc.Award(ctx, sub.UserID, rules.ActionInnovationApproved, 1, key); err != nil {
			s.log.Error().
				Err(err).
				Uint("submission_id", submissionID).
				Msg("Failed to credit approved innovation")
		}
	}

	s.log.Info().
		Uint("submission_id", submissionID).
		Uint("reviewer_id", actor.ID).
		Bool("approved", approved).
		Msg("Innovation reviewed")

	return s.innovationRepo.GetByID(submissionID)
}

// Resubmit returns a rejected proposal to the review queue with updated
// content. Owner only; the row keeps its identity across cycles.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Resubmit(ctx context.Context, userID, submissionID uint, title, summary string) (*models.InnovationSubmission, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	sub, err := s.innovationRepo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotOwner)
	}

	if err := s.innovationRepo.Resubmit(submissionID, title, summary); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("submission_id", submissionID).
		Msg("Innovation resubmitted")

	return s.innovationRepo.GetByID(submissionID)
}

// ListMine lists a user's own proposals.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListMine(ctx context.Context, userID uint) ([]models.InnovationSubmission, error) {
	return s.innovationRepo.ListByUser(userID)
}

// ListPending lists the review queue. Admin only.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListPending(ctx context.Context, actor *models.User) ([]models.InnovationSubmission, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.innovationRepo.ListByStatus(models.SubmissionStatusPending)
}
