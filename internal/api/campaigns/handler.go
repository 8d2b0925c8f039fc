// Package campaigns provides REST API handlers for tree-planting campaigns:
// listing, joining, tree submissions and the admin review/completion flow.
package campaigns

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
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/campaigns"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// CampaignService interface for campaign operations.
type CampaignService interface {
	CreateCampaign(ctx context.Context, actor *models.User, title, description string, targetTrees int, start, end time.Time) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, status string) ([]models.Campaign, error)
	GetReport(ctx context.Context, campaignID uint, now time.Time) (*campaigns.Report, error)
	Join(ctx context.Context, campaignID, userID uint) error
	SubmitTrees(ctx context.Context, campaignID, userID uint, treeCount int, photoURL string) (*models.TreeSubmission, error)
	ListSubmissions(ctx context.Context, actor *models.User, campaignID uint, status string) ([]models.TreeSubmission, error)
	ReviewSubmission(ctx context.Context, actor *models.User, submissionID uint, approved bool) (*models.TreeSubmission, error)
	CompleteCampaign(ctx context.Context, actor *models.User, campaignID uint) error
}

// Handler handles campaign API requests.
type Handler struct {
	campaignService CampaignService
	log             *logger.Logger
}

// NewHandler creates a new campaign handler.
func NewHandler(campaignService *campaigns.Service, log *logger.Logger) *Handler {
	return &Handler{campaignService: campaignService, log: log}
}

// NewHandlerWithInterfaces creates a new campaign handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(campaignService CampaignService, log *logger.Logger) *Handler {
	return &Handler{campaignService: campaignService, log: log}
}

type createCampaignRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	TargetTrees int       `json:"target_trees" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// Create creates a new campaign. Admin only.
// POST /api/v1/campaigns.
func (h *Handler) Create(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.campaignService.CreateCampaign(
		c.Request.Context(), middleware.CurrentUser(c),
		req.Title, req.Description, req.TargetTrees, req.StartDate, req.EndDate,
	)
	if err != nil {
		h.serviceError(c, err, "Failed to create campaign")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"campaign": campaign})
}

// List lists campaigns, optionally filtered by status.
// GET /api/v1/campaigns?status=active.
func (h *Handler) List(c *gin.Context) {
	status := c.Query("status")

	list, err := h.campaignService.ListCampaigns(c.Request.Context(), status)
	if err != nil {
		h.serviceError(c, err, "Failed to list campaigns")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": list,
		"total":     len(list),
	})
}

// GetReport returns a campaign with its computed progress report.
// GET /api/v1/campaigns/:id.
func (h *Handler) GetReport(c *gin.Context) {
	campaignID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.campaignService.GetReport(c.Request.Context(), campaignID, time.Now())
	if err != nil {
		h.serviceError(c, err, "Failed to get campaign report")
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Join adds the authenticated user as a campaign participant.
// POST /api/v1/campaigns/:id/join.
func (h *Handler) Join(c *gin.Context) {
	campaignID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.campaignService.Join(c.Request.Context(), campaignID, user.ID); err != nil {
		h.serviceError(c, err, "Failed to join campaign")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign_id": campaignID,
		"user_id":     user.ID,
		"joined":      true,
	})
}

type submitTreesRequest struct {
	TreeCount int    `json:"tree_count" binding:"required"`
	PhotoURL  string `json:"photo_url"`
}

// SubmitTrees records a pending tree-planting submission for review.
// POST /api/v1/campaigns/:id/submissions.
func (h *Handler) SubmitTrees(c *gin.Context) {
	campaignID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req submitTreesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	sub, err := h.campaignService.SubmitTrees(c.Request.Context(), campaignID, user.ID, req.TreeCount, req.PhotoURL)
	if err != nil {
		h.serviceError(c, err, "Failed to submit trees")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

// ListSubmissions lists a campaign's tree submissions. Admin only.
// GET /api/v1/campaigns/:id/submissions?status=pending.
func (h *Handler) ListSubmissions(c *gin.Context) {
	campaignID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	subs, err := h.campaignService.ListSubmissions(c.Request.Context(), middleware.CurrentUser(c), campaignID, c.Query("status"))
	if err != nil {
		h.serviceError(c, err, "Failed to list submissions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": subs,
		"total":       len(subs),
	})
}

type reviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ReviewSubmission applies an admin decision to a pending submission.
// POST /api/v1/submissions/:id/review.
func (h *Handler) ReviewSubmission(c *gin.Context) {
	submissionID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.campaignService.ReviewSubmission(c.Request.Context(), middleware.CurrentUser(c), submissionID, *req.Approved)
	if err != nil {
		h.serviceError(c, err, "Failed to review submission")
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

// Complete finalizes a campaign that has reached its target. Admin only.
// POST /api/v1/campaigns/:id/complete.
func (h *Handler) Complete(c *gin.Context) {
	campaignID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.campaignService.CompleteCampaign(c.Request.Context(), middleware.CurrentUser(c), campaignID); err != nil {
		h.serviceError(c, err, "Failed to complete campaign")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign_id": campaignID,
		"status":      models.CampaignStatusCompleted,
	})
}

// Helper functions

// parseID extracts and validates a numeric URL parameter.
func (h *Handler) parseID(c *gin.Context, name string) (uint, error) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, idStr)
	}
	return uint(id), nil
}

// serviceError maps service-layer errors onto HTTP status codes.
func (h *Handler) serviceError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, campaigns.ErrUnauthorized):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, campaigns.ErrNotParticipant):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, campaigns.ErrInvalidInput):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, campaigns.ErrCampaignClosed),
		errors.Is(err, repository.ErrAlreadyJoined),
		errors.Is(err, repository.ErrAlreadyDecided),
		errors.Is(err, repository.ErrInvalidTransition):
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
