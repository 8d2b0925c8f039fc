// Package challenges provides REST API handlers for time-boxed challenges:
// listing, joining, progress updates and per-user status.
package challenges

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/api/middleware"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/challenges"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// ChallengeService interface for challenge operations.
type ChallengeService interface {
	CreateChallenge(ctx context.Context, actor *models.User, title, description string, targetValue, rewardPoints int, start, end time.Time) (*models.Challenge, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Challenge, error)
	Join(ctx context.Context, challengeID, userID uint, now time.Time) (*models.ChallengeParticipant, error)
	UpdateProgress(ctx context.Context, challengeID, userID uint, delta int, now time.Time) (*challenges.Status, error)
	GetStatus(ctx context.Context, challengeID, userID uint) (*challenges.Status, error)
}

// Handler handles challenge API requests.
type Handler struct {
	challengeService ChallengeService
	log              *logger.Logger
}

// NewHandler creates a new challenge handler.
func NewHandler(challengeService *challenges.Service, log *logger.Logger) *Handler {
	return &Handler{challengeService: challengeService, log: log}
}

// NewHandlerWithInterfaces creates a new challenge handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(challengeService ChallengeService, log *logger.Logger) *Handler {
	return &Handler{challengeService: challengeService, log: log}
}

type createChallengeRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	TargetValue  int       `json:"target_value" binding:"required"`
	RewardPoints int       `json:"reward_points" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
}

// Create creates a new challenge. Admin only.
// POST /api/v1/challenges.
func (h *Handler) Create(c *gin.Context) {
	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	challenge, err := h.challengeService.CreateChallenge(
		c.Request.Context(), middleware.CurrentUser(c),
		req.Title, req.Description, req.TargetValue, req.RewardPoints, req.StartTime, req.EndTime,
	)
	if err != nil {
		h.serviceError(c, err, "Failed to create challenge")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"challenge": challenge})
}

// List lists challenges whose window contains the current instant.
// GET /api/v1/challenges.
func (h *Handler) List(c *gin.Context) {
	list, err := h.challengeService.ListActive(c.Request.Context(), time.Now())
	if err != nil {
		h.serviceError(c, err, "Failed to list challenges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenges": list,
		"total":      len(list),
	})
}

// Join enrolls the authenticated user in a challenge.
// POST /api/v1/challenges/:id/join.
func (h *Handler) Join(c *gin.Context) {
	challengeID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	participant, err := h.challengeService.Join(c.Request.Context(), challengeID, user.ID, time.Now())
	if err != nil {
		h.serviceError(c, err, "Failed to join challenge")
		return
	}

	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

type progressRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// UpdateProgress adds progress for the authenticated user. Crossing the
// target completes the challenge and pays the reward exactly once.
// POST /api/v1/challenges/:id/progress.
func (h *Handler) UpdateProgress(c *gin.Context) {
	challengeID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	status, err := h.challengeService.UpdateProgress(c.Request.Context(), challengeID, user.ID, req.Delta, time.Now())
	if err != nil {
		h.serviceError(c, err, "Failed to update challenge progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetStatus returns the authenticated user's standing in a challenge.
// GET /api/v1/challenges/:id/status.
func (h *Handler) GetStatus(c *gin.Context) {
	challengeID, err := h.parseID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	status, err := h.challengeService.GetStatus(c.Request.Context(), challengeID, user.ID)
	if err != nil {
		h.serviceError(c, err, "Failed to get challenge status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Helper functions

func (h *Handler) parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid challenge ID: %s", idStr)
	}
	return uint(id), nil
}

// serviceError maps service-layer errors onto HTTP status codes.
func (h *Handler) serviceError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, challenges.ErrUnauthorized):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, challenges.ErrNotJoined):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, challenges.ErrInvalidInput):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, challenges.ErrChallengeExpired),
		errors.Is(err, repository.ErrAlreadyJoined):
		h.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.errorResponse(c, http.StatusNotFound, "Not found")
	default:
		h.log.Error().Err(err).Msg(logMsg)
		h.errorResponse(c, http.StatusInternalServerError, logMsg)
	}
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
