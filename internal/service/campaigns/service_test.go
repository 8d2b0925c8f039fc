package campaigns

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/points"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Mock repositories for testing
type mockCampaignRepository struct {
	campaigns        map[uint]*models.Campaign
	participants     map[uint]map[uint]bool
	submissions      map[uint]*models.TreeSubmission
	nextCampaignID   uint
	nextSubmissionID uint
}

func newMockCampaignRepository() *mockCampaignRepository {
	return &mockCampaignRepository{
		campaigns:        make(map[uint]*models.Campaign),
		participants:     make(map[uint]map[uint]bool),
		submissions:      make(map[uint]*models.TreeSubmission),
		nextCampaignID:   1,
		nextSubmissionID: 1,
	}
}

func (m *mockCampaignRepository) Create(campaign *models.Campaign) error {
	campaign.ID = m.nextCampaignID
	m.nextCampaignID++
	m.campaigns[campaign.ID] = campaign
	return nil
}

func (m *mockCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	if c, ok := m.campaigns[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, fmt.Errorf("campaign %d not found", id)
}

func (m *mockCampaignRepository) List(status string) ([]models.Campaign, error) {
	var out []models.Campaign
	for _, c := range m.campaigns {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCampaignRepository) Join(campaignID, userID uint) error {
	if m.participants[campaignID] == nil {
		m.participants[campaignID] = make(map[uint]bool)
	}
	if m.participants[campaignID][userID] {
		return repository.ErrAlreadyJoined
	}
	m.participants[campaignID][userID] = true
	return nil
}

func (m *mockCampaignRepository) IsParticipant(campaignID, userID uint) (bool, error) {
	return m.participants[campaignID][userID], nil
}

func (m *mockCampaignRepository) CountParticipants(campaignID uint) (int64, error) {
	return int64(len(m.participants[campaignID])), nil
}

func (m *mockCampaignRepository) AddPlantedTrees(campaignID uint, count int) (int, error) {
	c, ok := m.campaigns[campaignID]
	if !ok {
		return 0, fmt.Errorf("campaign %d not found", campaignID)
	}
	c.PlantedTrees += count
	return c.PlantedTrees, nil
}

func (m *mockCampaignRepository) UpdateStatus(campaignID uint, from, to string) error {
	c, ok := m.campaigns[campaignID]
	if !ok {
		return fmt.Errorf("campaign %d not found", campaignID)
	}
	if c.Status != from {
		return repository.ErrInvalidTransition
	}
	c.Status = to
	return nil
}

func (m *mockCampaignRepository) CreateSubmission(sub *models.TreeSubmission) error {
	sub.ID = m.nextSubmissionID
	m.nextSubmissionID++
	m.submissions[sub.ID] = sub
	return nil
}

func (m *mockCampaignRepository) GetSubmissionByID(id uint) (*models.TreeSubmission, error) {
	if sub, ok := m.submissions[id]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, fmt.Errorf("submission %d not found", id)
}

func (m *mockCampaignRepository) ListSubmissions(campaignID uint, status string) ([]models.TreeSubmission, error) {
	var out []models.TreeSubmission
	for _, sub := range m.submissions {
		if sub.CampaignID == campaignID && (status == "" || sub.Status == status) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *mockCampaignRepository) DecideSubmission(submissionID, reviewerID uint, approved bool) error {
	sub, ok := m.submissions[submissionID]
	if !ok {
		return fmt.Errorf("submission %d not found", submissionID)
	}
	if sub.Status != models.SubmissionStatusPending {
		return repository.ErrAlreadyDecided
	}
	if approved {
		sub.Status = models.SubmissionStatusApproved
	} else {
		sub.Status = models.SubmissionStatusRejected
	}
	sub.ReviewedBy = &reviewerID
	now := time.Now()
	sub.ReviewedAt = &now
	return nil
}

type mockPointsService struct {
	awards map[string]int // idempotency key -> delta basis (multiplier)
}

func newMockPointsService() *mockPointsService {
	return &mockPointsService{awards: make(map[string]int)}
}

func (m *mockPointsService) Award(ctx context.Context, userID uint, kind rules.ActionKind, multiplier int, idempotencyKey string) (*points.AwardOutcome, error) {
	if _, exists := m.awards[idempotencyKey]; exists {
		return &points.AwardOutcome{UserID: userID, Replayed: true}, nil
	}
	m.awards[idempotencyKey] = multiplier
	return &points.AwardOutcome{UserID: userID, Delta: multiplier}, nil
}

type mockNotifier struct {
	milestones []int
}

func (m *mockNotifier) AnnounceBadge(username, tier string, totalPoints int) error { return nil }

func (m *mockNotifier) AnnounceMilestone(campaignTitle string, percent, planted, target int) error {
	m.milestones = append(m.milestones, percent)
	return nil
}

func (m *mockNotifier) AnnounceChallengeCompletion(username, challengeTitle string, reward int) error {
	return nil
}

func newTestService() (*Service, *mockCampaignRepository, *mockPointsService, *mockNotifier) {
	repo := newMockCampaignRepository()
	pointsSvc := newMockPointsService()
	notify := &mockNotifier{}
	log := logger.New("error", "console", "stderr")
	svc := NewServiceWithInterfaces(repo, pointsSvc, notify, log)
	return svc, repo, pointsSvc, notify
}

func adminUser() *models.User {
	return &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
}

func regularUser(id uint) *models.User {
	return &models.User{ID: id, Username: fmt.Sprintf("user%d", id), Role: models.RoleUser}
}

func createCampaign(t *testing.T, svc *Service, target int) *models.Campaign {
	t.Helper()
	campaign, err := svc.CreateCampaign(context.Background(), adminUser(), "Karura Restoration", "",
		target, time.Now().Add(-24*time.Hour), time.Now().Add(9*24*time.Hour))
	if err != nil {
		t.Fatalf("CreateCampaign() failed: %v", err)
	}
	return campaign
}

func TestService_CreateCampaign_AdminOnly(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateCampaign(context.Background(), regularUser(2), "Rogue campaign", "",
		100, time.Now(), time.Now().Add(24*time.Hour))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestService_CreateCampaign_RejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateCampaign(ctx, adminUser(), "No target", "", 0, time.Now(), time.Now().Add(24*time.Hour))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero target, got %v", err)
	}

	_, err = svc.CreateCampaign(ctx, adminUser(), "Backwards window", "", 100, time.Now(), time.Now().Add(-time.Hour))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty window, got %v", err)
	}
}

func TestService_Join_RequiresActiveCampaign(t *testing.T) {
	svc, repo, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)

	if err := svc.Join(context.Background(), campaign.ID, 2); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}

	repo.campaigns[campaign.ID].Status = models.CampaignStatusCompleted
	err := svc.Join(context.Background(), campaign.ID, 3)
	if !errors.Is(err, ErrCampaignClosed) {
		t.Fatalf("Expected ErrCampaignClosed, got %v", err)
	}
}

func TestService_SubmitTrees_RequiresParticipation(t *testing.T) {
	svc, _, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)

	_, err := svc.SubmitTrees(context.Background(), campaign.ID, 2, 10, "")
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("Expected ErrNotParticipant, got %v", err)
	}

	_ = svc.Join(context.Background(), campaign.ID, 2)

	sub, err := svc.SubmitTrees(context.Background(), campaign.ID, 2, 10, "https://img.example/proof.jpg")
	if err != nil {
		t.Fatalf("SubmitTrees() failed: %v", err)
	}
	if sub.Status != models.SubmissionStatusPending {
		t.Errorf("Expected pending submission, got %q", sub.Status)
	}
}

func TestService_SubmitTrees_RejectsNonPositiveCount(t *testing.T) {
	svc, _, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)

	_, err := svc.SubmitTrees(context.Background(), campaign.ID, 2, 0, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestService_ReviewSubmission_AdminOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)
	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 10, "")

	_, err := svc.ReviewSubmission(context.Background(), regularUser(2), sub.ID, true)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestService_ReviewSubmission_ApproveCredits(t *testing.T) {
	svc, repo, pointsSvc, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)
	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 12, "")

	reviewed, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true)
	if err != nil {
		t.Fatalf("ReviewSubmission() failed: %v", err)
	}
	if reviewed.Status != models.SubmissionStatusApproved {
		t.Errorf("Expected approved status, got %q", reviewed.Status)
	}

	if repo.campaigns[campaign.ID].PlantedTrees != 12 {
		t.Errorf("Expected 12 planted trees, got %d", repo.campaigns[campaign.ID].PlantedTrees)
	}

	// One point per tree, keyed to the submission.
	key := fmt.Sprintf("tree_submission:%d:approved", sub.ID)
	if pointsSvc.awards[key] != 12 {
		t.Errorf("Expected planter credited with multiplier 12, got %d", pointsSvc.awards[key])
	}
}

func TestService_ReviewSubmission_RejectDoesNotCredit(t *testing.T) {
	svc, repo, pointsSvc, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)
	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 12, "")

	reviewed, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, false)
	if err != nil {
		t.Fatalf("ReviewSubmission() failed: %v", err)
	}
	if reviewed.Status != models.SubmissionStatusRejected {
		t.Errorf("Expected rejected status, got %q", reviewed.Status)
	}

	if repo.campaigns[campaign.ID].PlantedTrees != 0 {
		t.Errorf("Expected planted count untouched, got %d", repo.campaigns[campaign.ID].PlantedTrees)
	}
	if len(pointsSvc.awards) != 0 {
		t.Errorf("Expected no points awarded, got %v", pointsSvc.awards)
	}
}

func TestService_ReviewSubmission_DecisionIsFinal(t *testing.T) {
	svc, _, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)
	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 12, "")

	if _, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, false); err != nil {
		t.Fatalf("First ReviewSubmission() failed: %v", err)
	}

	_, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true)
	if !errors.Is(err, repository.ErrAlreadyDecided) {
		t.Fatalf("Expected ErrAlreadyDecided, got %v", err)
	}
}

func TestService_ReviewSubmission_AnnouncesMilestones(t *testing.T) {
	svc, _, _, notify := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)

	// 0 -> 55 crosses 25% and 50% in one approval.
	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 55, "")
	if _, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true); err != nil {
		t.Fatalf("ReviewSubmission() failed: %v", err)
	}

	if len(notify.milestones) != 2 || notify.milestones[0] != 25 || notify.milestones[1] != 50 {
		t.Errorf("Expected milestones [25 50], got %v", notify.milestones)
	}
}

func TestService_ReviewSubmission_TargetReachedGoesPending(t *testing.T) {
	svc, repo, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)

	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 120, "")
	if _, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true); err != nil {
		t.Fatalf("ReviewSubmission() failed: %v", err)
	}

	// Target reached never auto-completes; an admin must finish it.
	if repo.campaigns[campaign.ID].Status != models.CampaignStatusCompletionPending {
		t.Errorf("Expected completion_pending, got %q", repo.campaigns[campaign.ID].Status)
	}
}

// staleReadCampaignRepository serves campaign snapshots that lag behind the
// planted counter, the way a read racing a concurrent approval would.
type staleReadCampaignRepository struct {
	*mockCampaignRepository
	staleBy int
}

func (m *staleReadCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	c, err := m.mockCampaignRepository.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c.PlantedTrees >= m.staleBy {
		c.PlantedTrees -= m.staleBy
	}
	return c, nil
}

func TestService_ReviewSubmission_TargetDecisionSurvivesStaleRead(t *testing.T) {
	repo := newMockCampaignRepository()
	stale := &staleReadCampaignRepository{mockCampaignRepository: repo, staleBy: 60}
	log := logger.New("error", "console", "stderr")
	svc := NewServiceWithInterfaces(stale, newMockPointsService(), nil, log)

	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)

	// A concurrent approval already landed 60 trees; this snapshot-lagging
	// repository reports the campaign as if it had not.
	repo.campaigns[campaign.ID].PlantedTrees = 60

	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 40, "")
	if _, err := svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true); err != nil {
		t.Fatalf("ReviewSubmission() failed: %v", err)
	}

	// 60 + 40 reaches the target even though the pre-increment snapshot
	// said 0; the flip must come from the counter's own total.
	if repo.campaigns[campaign.ID].Status != models.CampaignStatusCompletionPending {
		t.Errorf("Expected completion_pending, got %q", repo.campaigns[campaign.ID].Status)
	}
}

func TestService_CompleteCampaign(t *testing.T) {
	svc, repo, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)

	// Completing before the target is pending must fail.
	err := svc.CompleteCampaign(context.Background(), adminUser(), campaign.ID)
	if !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 100, "")
	_, _ = svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true)

	if err := svc.CompleteCampaign(context.Background(), adminUser(), campaign.ID); err != nil {
		t.Fatalf("CompleteCampaign() failed: %v", err)
	}
	if repo.campaigns[campaign.ID].Status != models.CampaignStatusCompleted {
		t.Errorf("Expected completed, got %q", repo.campaigns[campaign.ID].Status)
	}

	err = svc.CompleteCampaign(context.Background(), regularUser(2), campaign.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestService_GetReport(t *testing.T) {
	svc, _, _, _ := newTestService()
	campaign := createCampaign(t, svc, 100)
	_ = svc.Join(context.Background(), campaign.ID, 2)

	sub, _ := svc.SubmitTrees(context.Background(), campaign.ID, 2, 50, "")
	_, _ = svc.ReviewSubmission(context.Background(), adminUser(), sub.ID, true)

	report, err := svc.GetReport(context.Background(), campaign.ID, time.Now())
	if err != nil {
		t.Fatalf("GetReport() failed: %v", err)
	}

	if report.Progress.Percent != 50 {
		t.Errorf("Expected 50%% progress, got %f", report.Progress.Percent)
	}
	if report.Participants != 1 {
		t.Errorf("Expected 1 participant, got %d", report.Participants)
	}
	if !report.Progress.Milestones[1].Achieved {
		t.Error("Expected the 50%% milestone to be achieved")
	}
}
