package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// createTestChallenge creates a currently-open test challenge.
func createTestChallenge(t *testing.T, repo *ChallengeRepository, target, reward int) *models.Challenge {
	t.Helper()

	challenge := &models.Challenge{
		Title:        "Plant 5 trees this week",
		TargetValue:  target,
		RewardPoints: reward,
		StartTime:    time.Now().Add(-time.Hour),
		EndTime:      time.Now().Add(7 * 24 * time.Hour),
	}

	if err := repo.Create(challenge); err != nil {
		t.Fatalf("Failed to create test challenge: %v", err)
	}

	return challenge
}

func TestChallengeRepository_Join(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)
	challenge := createTestChallenge(t, repo, 5, 50)

	participant, err := repo.Join(challenge.ID, user.ID)
	if err != nil {
		t.Fatalf("Join() failed: %v", err)
	}

	if participant.Progress != 0 {
		t.Errorf("Expected fresh participant at 0 progress, got %d", participant.Progress)
	}
	if participant.Completed {
		t.Error("Expected fresh participant to be incomplete")
	}

	stored, err := repo.GetByID(challenge.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if stored.ParticipantCount != 1 {
		t.Errorf("Expected participant_count 1, got %d", stored.ParticipantCount)
	}
}

func TestChallengeRepository_Join_Twice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)
	challenge := createTestChallenge(t, repo, 5, 50)

	if _, err := repo.Join(challenge.ID, user.ID); err != nil {
		t.Fatalf("First Join() failed: %v", err)
	}

	_, err := repo.Join(challenge.ID, user.ID)
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("Expected ErrAlreadyJoined, got %v", err)
	}

	// The rolled-back transaction must leave the counter untouched.
	stored, _ := repo.GetByID(challenge.ID)
	if stored.ParticipantCount != 1 {
		t.Errorf("Expected participant_count to stay 1, got %d", stored.ParticipantCount)
	}
}

func TestChallengeRepository_Join_UnknownChallenge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)

	_, err := repo.Join(999, user.ID)
	if err == nil {
		t.Error("Expected error when joining non-existent challenge")
	}
}

func TestChallengeRepository_GetParticipant_NotJoined(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)
	challenge := createTestChallenge(t, repo, 5, 50)

	participant, err := repo.GetParticipant(challenge.ID, user.ID)
	if err != nil {
		t.Fatalf("GetParticipant() failed: %v", err)
	}
	if participant != nil {
		t.Error("Expected nil participant before joining")
	}
}

func TestChallengeRepository_AddProgress(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)
	challenge := createTestChallenge(t, repo, 5, 50)
	_, _ = repo.Join(challenge.ID, user.ID)

	participant, err := repo.AddProgress(challenge.ID, user.ID, 3)
	if err != nil {
		t.Fatalf("AddProgress() failed: %v", err)
	}
	if participant.Progress != 3 {
		t.Errorf("Expected progress 3, got %d", participant.Progress)
	}

	// Progress is stored raw, even past the target.
	participant, err = repo.AddProgress(challenge.ID, user.ID, 4)
	if err != nil {
		t.Fatalf("Second AddProgress() failed: %v", err)
	}
	if participant.Progress != 7 {
		t.Errorf("Expected raw progress 7, got %d", participant.Progress)
	}
}

func TestChallengeRepository_AddProgress_NotJoined(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)
	challenge := createTestChallenge(t, repo, 5, 50)

	_, err := repo.AddProgress(challenge.ID, user.ID, 1)
	if err == nil {
		t.Error("Expected error when progressing without joining")
	}
}

func TestChallengeRepository_MarkCompleted_ExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	user := createTestUser(t, db, "alice", models.RoleUser)
	challenge := createTestChallenge(t, repo, 5, 50)
	_, _ = repo.Join(challenge.ID, user.ID)

	won, err := repo.MarkCompleted(challenge.ID, user.ID)
	if err != nil {
		t.Fatalf("MarkCompleted() failed: %v", err)
	}
	if !won {
		t.Error("Expected first completion to win")
	}

	won, err = repo.MarkCompleted(challenge.ID, user.ID)
	if err != nil {
		t.Fatalf("Second MarkCompleted() failed: %v", err)
	}
	if won {
		t.Error("Expected second completion to lose the guard")
	}

	participant, _ := repo.GetParticipant(challenge.ID, user.ID)
	if !participant.Completed {
		t.Error("Expected participant to be completed")
	}
	if participant.CompletedAt == nil {
		t.Error("Expected completion timestamp to be recorded")
	}
}

func TestChallengeRepository_List_ActiveWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	now := time.Now()

	open := createTestChallenge(t, repo, 5, 50)

	expired := &models.Challenge{
		Title:        "Last month's sprint",
		TargetValue:  10,
		RewardPoints: 100,
		StartTime:    now.Add(-30 * 24 * time.Hour),
		EndTime:      now.Add(-23 * 24 * time.Hour),
	}
	if err := repo.Create(expired); err != nil {
		t.Fatalf("Failed to create expired challenge: %v", err)
	}

	active, err := repo.List(now)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("Expected 1 active challenge, got %d", len(active))
	}
	if active[0].ID != open.ID {
		t.Error("Expected the open challenge to be listed")
	}

	all, err := repo.List(time.Time{})
	if err != nil {
		t.Fatalf("List() without window failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 challenges, got %d", len(all))
	}
}
