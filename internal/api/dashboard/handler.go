// Package dashboard provides REST API handlers for the impact dashboard.
// It exposes endpoints for the leaderboard, user scoring summaries, ledgers
// and the badge tier catalog.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/leaderboard"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/points"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// PointsService interface for scoring summaries.
type PointsService interface {
	GetSummary(ctx context.Context, userID uint) (*points.Summary, error)
	GetLedger(ctx context.Context, userID uint, limit int) ([]models.PointsEntry, error)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	pointsService      PointsService
	leaderboardService LeaderboardService
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(pointsService *points.Service, leaderboardService *leaderboard.Service, log *logger.Logger) *Handler {
	return &Handler{
		pointsService:      pointsService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(pointsService PointsService, leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		pointsService:      pointsService,
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// GetLeaderboard returns the top users by cumulative points.
// GET /api/v1/leaderboard?limit=25.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, leaderboard.DefaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetUserSummary returns a user's points, tier, badges and recent ledger.
// GET /api/v1/users/:id/summary.
func (h *Handler) GetUserSummary(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.pointsService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		h.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to get user summary")
		h.errorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"generated_at": time.Now().UTC(),
	})
}

// GetUserLedger returns a user's points ledger, newest first.
// GET /api/v1/users/:id/ledger?limit=50.
func (h *Handler) GetUserLedger(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.pointsService.GetLedger(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user ledger")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve ledger")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"entries":      entries,
		"total":        len(entries),
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeCatalog returns the badge tier ladder.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	tiers := rules.Tiers()

	c.JSON(http.StatusOK, gin.H{
		"tiers":        tiers,
		"total_tiers":  len(tiers),
		"generated_at": time.Now().UTC(),
	})
}

// Helper functions

// parseUserID extracts and validates the user ID from the URL parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %s", idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
