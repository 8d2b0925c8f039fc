package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.User{},
		&models.PointsEntry{},
		&models.BadgeAward{},
		&models.Campaign{},
		&models.CampaignParticipant{},
		&models.TreeSubmission{},
		&models.Discussion{},
		&models.Comment{},
		&models.Vote{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
		&models.InnovationSubmission{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *DB, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// setUserPoints writes a user's cumulative points directly, bypassing the
// ledger, for tests that only care about the stored total.
func setUserPoints(t *testing.T, db *DB, userID uint, points int) {
	t.Helper()

	err := db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", points).Error
	if err != nil {
		t.Fatalf("Failed to set user points: %v", err)
	}
}
