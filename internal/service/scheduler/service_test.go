package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Mock repositories for testing
type mockChallengeRepository struct {
	challenges []models.Challenge
}

func (m *mockChallengeRepository) List(activeAt time.Time) ([]models.Challenge, error) {
	if activeAt.IsZero() {
		return m.challenges, nil
	}
	var out []models.Challenge
	for _, c := range m.challenges {
		if !c.StartTime.After(activeAt) && c.EndTime.After(activeAt) {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockUserRepository struct {
	users []models.User
}

func (m *mockUserRepository) List(role string) ([]models.User, error) {
	return m.users, nil
}

type mockLedgerRepository struct {
	awards map[string]bool // "userID:tier"
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{awards: make(map[string]bool)}
}

func (m *mockLedgerRepository) AwardTier(userID uint, tier string, threshold int) (bool, error) {
	key := fmt.Sprintf("%d:%s", userID, tier)
	if m.awards[key] {
		return false, nil
	}
	m.awards[key] = true
	return true, nil
}

type mockLeaderboardService struct {
	refreshes int
}

func (m *mockLeaderboardService) Refresh(ctx context.Context) error {
	m.refreshes++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			Enabled:            true,
			ChallengeSweepCron: "*/15 * * * *",
			LeaderboardCron:    "*/5 * * * *",
			BadgeAuditCron:     "0 3 * * *",
			Timezone:           "UTC",
		},
	}
}

func newTestService(cfg *config.Config) (*Service, *mockLedgerRepository, *mockLeaderboardService) {
	ledgerRepo := newMockLedgerRepository()
	leaderboardSvc := &mockLeaderboardService{}
	log := logger.New("error", "console", "stderr")

	challengeRepo := &mockChallengeRepository{
		challenges: []models.Challenge{
			{ID: 1, EndTime: time.Now().Add(24 * time.Hour), ParticipantCount: 3},
			{ID: 2, EndTime: time.Now().Add(-time.Hour), ParticipantCount: 5},
		},
	}
	userRepo := &mockUserRepository{
		users: []models.User{
			{ID: 1, Username: "alice", Points: 550},
			{ID: 2, Username: "bob", Points: 40},
		},
	}

	svc := NewServiceWithInterfaces(cfg, challengeRepo, userRepo, ledgerRepo, leaderboardSvc, log)
	return svc, ledgerRepo, leaderboardSvc
}

func TestService_Start_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.Enabled = false
	svc, _, _ := newTestService(cfg)

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() with disabled scheduler failed: %v", err)
	}
	if svc.cron != nil {
		t.Error("Expected no cron instance when scheduler is disabled")
	}
}

func TestService_Start_InvalidTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.Timezone = "Mars/Olympus"
	svc, _, _ := newTestService(cfg)

	if err := svc.Start(); err == nil {
		t.Fatal("Expected error for invalid timezone")
	}
}

func TestService_Start_RegistersConfiguredJobs(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.BadgeAuditCron = ""
	svc, _, _ := newTestService(cfg)

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer svc.Stop()

	if got := len(svc.cron.Entries()); got != 2 {
		t.Errorf("Expected 2 registered jobs, got %d", got)
	}
}

func TestService_Start_InvalidCronExpression(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.LeaderboardCron = "not a cron"
	svc, _, _ := newTestService(cfg)

	if err := svc.Start(); err == nil {
		t.Fatal("Expected error for invalid cron expression")
	}
}

func TestService_RunLeaderboardRefresh(t *testing.T) {
	svc, _, leaderboardSvc := newTestService(testConfig())

	svc.runLeaderboardRefresh(context.Background())

	if leaderboardSvc.refreshes != 1 {
		t.Errorf("Expected 1 refresh, got %d", leaderboardSvc.refreshes)
	}
}

func TestService_RunBadgeAudit_RepairsMissingAwards(t *testing.T) {
	svc, ledgerRepo, _ := newTestService(testConfig())

	svc.runBadgeAudit(context.Background())

	// alice (550 points) holds three tiers, bob (40) only the base tier.
	expected := []string{
		"1:New Sprout",
		"1:Tree Hugger",
		"1:Forest Guardian",
		"2:New Sprout",
	}
	for _, key := range expected {
		if !ledgerRepo.awards[key] {
			t.Errorf("Expected award %q after audit", key)
		}
	}
	if len(ledgerRepo.awards) != len(expected) {
		t.Errorf("Expected %d awards, got %d: %v", len(expected), len(ledgerRepo.awards), ledgerRepo.awards)
	}
}

func TestService_RunBadgeAudit_Idempotent(t *testing.T) {
	svc, ledgerRepo, _ := newTestService(testConfig())
	ctx := context.Background()

	svc.runBadgeAudit(ctx)
	first := len(ledgerRepo.awards)

	svc.runBadgeAudit(ctx)
	if len(ledgerRepo.awards) != first {
		t.Errorf("Expected repeat audit to grant nothing new, got %d -> %d", first, len(ledgerRepo.awards))
	}
}

func TestService_RunChallengeSweep(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	// One active and one expired challenge; the sweep must not error on either.
	svc.runChallengeSweep(context.Background())
}

func TestService_Stop_WithoutStart(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	// Stop before Start is a no-op, not a panic.
	svc.Stop()
}
