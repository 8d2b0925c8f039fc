// Package campaigns manages tree-planting campaigns: participation, planting
// submissions, review decisions and derived progress reports.
package campaigns

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

// Errors returned by campaign operations.
var (
	ErrUnauthorized   = errors.New("operation requires admin role")
	ErrNotParticipant = errors.New("user has not joined the campaign")
	ErrCampaignClosed = errors.New("campaign is not accepting submissions")
	ErrInvalidInput   = errors.New("invalid input")
)

// CampaignRepository interface for campaign operations.
type CampaignRepository interface {
	Create(campaign *models.Campaign) error
	GetByID(id uint) (*models.Campaign, error)
	List(status string) ([]models.Campaign, error)
	Join(campaignID, userID uint) error
	IsParticipant(campaignID, userID uint) (bool, error)
	CountParticipants(campaignID uint) (int64, error)
	AddPlantedTrees(campaignID uint, count int) (int, error)
	UpdateStatus(campaignID uint, from, to string) error
	CreateSubmission(sub *models.TreeSubmission) error
	GetSubmissionByID(id uint) (*models.TreeSubmission, error)
	ListSubmissions(campaignID uint, status string) ([]models.TreeSubmission, error)
	DecideSubmission(submissionID, reviewerID uint, approved bool) error
}

// PointsService interface for crediting planters.
type PointsService interface {
	Award(ctx context.Context, userID uint, kind rules.ActionKind, multiplier int, idempotencyKey string) (*points.AwardOutcome, error)
}

// Service handles campaign lifecycle and submissions.
type Service struct {
	campaignRepo CampaignRepository
	pointsSvc    PointsService
	notify       notifier.Notifier
	log          *logger.Logger
}

// Report is a campaign with its derived progress.
type Report struct {
	Campaign     *models.Campaign       `json:"campaign"`
	Progress     rules.CampaignProgress `json:"progress"`
	Participants int64                  `json:"participants"`
}

// NewService creates a new campaign service.
func NewService(
	campaignRepo *repository.CampaignRepository,
	pointsSvc PointsService,
	notify notifier.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		pointsSvc:    pointsSvc,
		notify:       notify,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new campaign service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	campaignRepo CampaignRepository,
	pointsSvc PointsService,
	notify notifier.Notifier,
	log *logger.Logger,
) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		pointsSvc:    pointsSvc,
		notify:       notify,
		log:          log,
	}
}

// CreateCampaign creates an active campaign. Admin only.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) CreateCampaign(ctx context.Context, actor *models.User, title, description string, targetTrees int, start, end time.Time) (*models.Campaign, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if targetTrees <= 0 {
		return nil, fmt.Errorf("%w: target must be positive", ErrInvalidInput)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: campaign window is empty", ErrInvalidInput)
	}

	campaign := &models.Campaign{
		Title:       title,
		Description: description,
		TargetTrees: targetTrees,
		StartDate:   start,
		EndDate:     end,
		Status:      models.CampaignStatusActive,
		CreatedBy:   actor.ID,
	}
	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("campaign_id", campaign.ID).
		Str("title", title).
		Int("target", targetTrees).
		Msg("Campaign created")

	return campaign, nil
}

// ListCampaigns lists campaigns with an optional status filter.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListCampaigns(ctx context.Context, status string) ([]models.Campaign, error) {
	return s.campaignRepo.List(status)
}

// GetReport returns a campaign with its derived progress as of now.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetReport(ctx context.Context, campaignID uint, now time.Time) (*Report, error) {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	progress, err := rules.Progress(campaign.TargetTrees, campaign.PlantedTrees, campaign.StartDate, campaign.EndDate, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute campaign progress: %w", err)
	}

	participants, err := s.campaignRepo.CountParticipants(campaignID)
	if err != nil {
		return nil, err
	}

	prommetrics.SetCampaignProgress(strconv.FormatUint(uint64(campaignID), 10), int(progress.Percent))

	return &Report{
		Campaign:     campaign,
		Progress:     progress,
		Participants: participants,
	}, nil
}

// Join adds a user to an active campaign.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) Join(ctx context.Context, campaignID, userID uint) error {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != models.CampaignStatusActive {
		return fmt.Errorf("campaign %d: %w", campaignID, ErrCampaignClosed)
	}

	return s.campaignRepo.Join(campaignID, userID)
}

// SubmitTrees records a pending planting submission. The submitter must have
// joined the campaign first.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) SubmitTrees(ctx context.Context, campaignID, userID uint, treeCount int, photoURL string) (*models.TreeSubmission, error) {
	if treeCount <= 0 {
		return nil, fmt.Errorf("%w: tree count must be positive", ErrInvalidInput)
	}

	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusCompleted {
		return nil, fmt.Errorf("campaign %d: %w", campaignID, ErrCampaignClosed)
	}

	isParticipant, err := s.campaignRepo.IsParticipant(campaignID, userID)
	if err != nil {
		return nil, err
	}
	if !isParticipant {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotParticipant)
	}

	sub := &models.TreeSubmission{
		CampaignID: campaignID,
		UserID:     userID,
		TreeCount:  treeCount,
		PhotoURL:   photoURL,
		Status:     models.SubmissionStatusPending,
	}
	if err := s.campaignRepo.CreateSubmission(sub); err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("campaign_id", campaignID).
		Uint("user_id", userID).
		Int("trees", treeCount).
		Msg("Tree submission recorded")

	return sub, nil
}

// ListSubmissions lists a campaign's submissions. Admin only: the review
// queue exposes other users' pending proofs.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) ListSubmissions(ctx context.Context, actor *models.User, campaignID uint, status string) ([]models.TreeSubmission, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.campaignRepo.ListSubmissions(campaignID, status)
}

// ReviewSubmission applies an admin decision to a pending submission.
// Approval credits the planted count to the campaign total and pays the
// planter one point per tree; the submission's own idempotency key means a
// retried approval can never double-credit. When the target is reached the
// campaign moves to completion-pending, never straight to completed.
func (s *Service) ReviewSubmission(ctx context.Context, actor *models.User, submissionID uint, approved bool) (*models.TreeSubmission, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	sub, err := s.campaignRepo.GetSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}

	if err := s.campaignRepo.DecideSubmission(submissionID, actor.ID, approved); err != nil {
		return nil, err
	}

	status := models.SubmissionStatusRejected
	if approved {
		status = models.SubmissionStatusApproved
	}
	prommetrics.RecordTreeSubmissionDecision(status, sub.TreeCount)

	if approved {
		if err := s.applyApproval(ctx, sub); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Uint("submission_id", submissionID).
		Uint("reviewer_id", actor.ID).
		Bool("approved", approved).
		Msg("Tree submission reviewed")

	return s.campaignRepo.GetSubmissionByID(submissionID)
}

// applyApproval credits an approved submission: campaign total, planter
// points, milestone announcements and the completion-pending transition.
func (s *Service) applyApproval(ctx context.Context, sub *models.TreeSubmission) error {
	campaign, err := s.campaignRepo.GetByID(sub.CampaignID)
	if err != nil {
		return err
	}

	// The milestone and target decisions run off the post-increment total
	// the repository read inside its transaction. A snapshot taken before
	// the increment can miss the crossing when approvals race.
	newPlanted, err := s.campaignRepo.AddPlantedTrees(sub.CampaignID, sub.TreeCount)
	if err != nil {
		return err
	}
	oldPlanted := newPlanted - sub.TreeCount

	key := fmt.Sprintf("tree_submission:%d:approved", sub.ID)
	if _, err := s.pointsSvc.Award(ctx, sub.UserID, rules.ActionTreeApproved, sub.TreeCount, key); err != nil {
		s.log.Error().
			Err(err).
			Uint("submission_id", sub.ID).
			Msg("Failed to credit planter points")
	}

	s.announceMilestones(campaign, oldPlanted, newPlanted)

	if newPlanted >= campaign.TargetTrees {
		err := s.campaignRepo.UpdateStatus(sub.CampaignID, models.CampaignStatusActive, models.CampaignStatusCompletionPending)
		if err != nil && !errors.Is(err, repository.ErrInvalidTransition) {
			return err
		}
		if err == nil {
			s.log.Info().
				Uint("campaign_id", sub.CampaignID).
				Msg("Campaign target reached, awaiting admin completion")
		}
	}

	return nil
}

// announceMilestones announces every milestone crossed by this credit.
func (s *Service) announceMilestones(campaign *models.Campaign, oldPlanted, newPlanted int) {
	if s.notify == nil {
		return
	}
	for _, pct := range []int{25, 50, 75, 100} {
		threshold := campaign.TargetTrees * pct / 100
		if oldPlanted < threshold && newPlanted >= threshold {
			if err := s.notify.AnnounceMilestone(campaign.Title, pct, newPlanted, campaign.TargetTrees); err != nil {
				s.log.Warn().
					Err(err).
					Uint("campaign_id", campaign.ID).
					Int("percent", pct).
					Msg("Failed to announce campaign milestone")
			}
		}
	}
}

// CompleteCampaign finalizes a campaign whose target was reached. Admin only;
// the campaign must already be completion-pending.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) CompleteCampaign(ctx context.Context, actor *models.User, campaignID uint) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}

	err := s.campaignRepo.UpdateStatus(campaignID, models.CampaignStatusCompletionPending, models.CampaignStatusCompleted)
	if err != nil {
		return err
	}

	s.log.Info().
		Uint("campaign_id", campaignID).
		Uint("admin_id", actor.ID).
		Msg("Campaign completed")

	return nil
}
