//nolint:noctx // Test file uses http.NewRequest for simplicity
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/leaderboard"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/points"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Mock Points Service
type mockPointsService struct {
	summaries map[uint]*points.Summary
	ledgers   map[uint][]models.PointsEntry
}

func newMockPointsService() *mockPointsService {
	return &mockPointsService{
		summaries: make(map[uint]*points.Summary),
		ledgers:   make(map[uint][]models.PointsEntry),
	}
}

func (m *mockPointsService) GetSummary(ctx context.Context, userID uint) (*points.Summary, error) {
	summary, exists := m.summaries[userID]
	if !exists {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	return summary, nil
}

func (m *mockPointsService) GetLedger(ctx context.Context, userID uint, limit int) ([]models.PointsEntry, error) {
	entries := m.ledgers[userID]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Mock Leaderboard Service
type mockLeaderboardService struct {
	entries []leaderboard.Entry
}

func (m *mockLeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	entries := m.entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Test Setup
func setupTestHandler() (*Handler, *mockPointsService, *mockLeaderboardService) {
	pointsService := newMockPointsService()
	leaderboardService := &mockLeaderboardService{}
	log := logger.New("error", "console", "stderr")

	handler := NewHandlerWithInterfaces(pointsService, leaderboardService, log)

	return handler, pointsService, leaderboardService
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	api := router.Group("/api/v1")
	api.GET("/leaderboard", handler.GetLeaderboard)
	api.GET("/users/:id/summary", handler.GetUserSummary)
	api.GET("/users/:id/ledger", handler.GetUserLedger)
	api.GET("/badges", handler.GetBadgeCatalog)

	return router
}

// Tests

func TestGetLeaderboard_Success(t *testing.T) {
	handler, _, leaderboardService := setupTestHandler()
	router := setupRouter(handler)

	leaderboardService.entries = []leaderboard.Entry{
		{Rank: 1, UserID: 1, Username: "alice", Points: 550, Tier: "Forest Guardian"},
		{Rank: 2, UserID: 2, Username: "bob", Points: 120, Tier: "Tree Hugger"},
	}

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?limit=10", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(2), response["total_entries"])
}

func TestGetLeaderboard_InvalidLimit(t *testing.T) {
	handler, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/leaderboard?limit=abc", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "invalid limit")
}

func TestGetUserSummary_Success(t *testing.T) {
	handler, pointsService, _ := setupTestHandler()
	router := setupRouter(handler)

	pointsService.summaries[1] = &points.Summary{
		UserID:   1,
		Username: "alice",
		Points:   550,
		Tier:     rules.ResolveTier(550),
	}

	req, _ := http.NewRequest("GET", "/api/v1/users/1/summary", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Forest Guardian")
}

func TestGetUserSummary_NotFound(t *testing.T) {
	handler, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/users/42/summary", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserSummary_InvalidID(t *testing.T) {
	handler, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/users/abc/summary", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserLedger_Success(t *testing.T) {
	handler, pointsService, _ := setupTestHandler()
	router := setupRouter(handler)

	pointsService.ledgers[1] = []models.PointsEntry{
		{ID: 2, UserID: 1, ActionKind: "tree_submission_approved", Delta: 60},
		{ID: 1, UserID: 1, ActionKind: "discussion_created", Delta: 10},
	}

	req, _ := http.NewRequest("GET", "/api/v1/users/1/ledger?limit=1", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), response["total"])
}

func TestGetBadgeCatalog(t *testing.T) {
	handler, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/badges", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(6), response["total_tiers"])
	assert.Contains(t, w.Body.String(), "Environmental Champion")
}
